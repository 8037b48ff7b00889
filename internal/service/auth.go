package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/model"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken       = errors.New("username already registered")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("incorrect username or password")
	ErrInvalidToken        = errors.New("could not validate credentials")
	ErrInvalidGoogleToken  = errors.New("invalid google token")
	ErrInvalidRegistration = errors.New("username, email and password are required")
)

// UserStore persists accounts
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthOptions configures token issuance
type AuthOptions struct {
	SecretKey  string
	Algorithm  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService handles registration, password login and bearer tokens
type AuthService struct {
	users    UserStore
	secret   []byte
	method   jwt.SigningMethod
	ttl      time.Duration
	cost     int
	verifier IdentityVerifier
	log      *logger.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service. verifier may be nil, in which
// case GoogleLogin is rejected.
func NewAuthService(users UserStore, opts AuthOptions, verifier IdentityVerifier, log *logger.Logger) (*AuthService, error) {
	method := jwt.GetSigningMethod(opts.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", opts.Algorithm)
	}
	if opts.SecretKey == "" {
		return nil, fmt.Errorf("secret key is empty")
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &AuthService{
		users:    users,
		secret:   []byte(opts.SecretKey),
		method:   method,
		ttl:      ttl,
		cost:     cost,
		verifier: verifier,
		log:      log.With("service", "AuthService"),
		now:      time.Now,
	}, nil
}

// Register creates an account with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, ErrInvalidRegistration
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Username: username, Email: email, HashedPassword: string(hash)}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.log.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks a password and returns a bearer token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(user)
}

// IssueToken signs a token with sub = username, expiring after the TTL
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// GoogleLogin verifies a Google ID token, finds or creates the user by email
// and returns a bearer token for them.
func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (string, error) {
	if s.verifier == nil {
		return "", fmt.Errorf("%w: google login is not configured", ErrInvalidGoogleToken)
	}

	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}
	if identity.Email == "" {
		return "", fmt.Errorf("%w: token carries no email", ErrInvalidGoogleToken)
	}

	user, err := s.users.GetUserByEmail(ctx, identity.Email)
	if err != nil {
		return "", err
	}
	if user == nil {
		user, err = s.createFederatedUser(ctx, identity)
		if err != nil {
			return "", err
		}
	}
	return s.IssueToken(user)
}

// createFederatedUser stores a user that can only sign in through the
// identity provider: the password is random and never disclosed.
func (s *AuthService) createFederatedUser(ctx context.Context, identity *ExternalIdentity) (*model.User, error) {
	username := identity.Name
	if username == "" {
		username = strings.SplitN(identity.Email, "@", 2)[0]
	}
	taken, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		username = identity.Email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Username: username, Email: identity.Email, HashedPassword: string(hash)}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("User created from Google login", "user_id", user.ID, "username", user.Username)
	return user, nil
}
