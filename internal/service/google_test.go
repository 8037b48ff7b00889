package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"
	"github.com/golang-jwt/jwt/v5"
)

const testClientID = "lumina-test.apps.googleusercontent.com"

func newJWKSServer(t *testing.T, kid string, key *rsa.PublicKey, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kid": kid,
				"kty": "RSA",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signGoogleToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	return s
}

func TestGoogleVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	var hits int32
	srv := newJWKSServer(t, "k1", &key.PublicKey, &hits)
	v := NewGoogleVerifier(testClientID, srv.URL, logger.NewNop())
	ctx := context.Background()

	valid := jwt.MapClaims{
		"iss":   "https://accounts.google.com",
		"aud":   testClientID,
		"sub":   "10769150350006150715113082367",
		"email": "asha@example.com",
		"name":  "Asha",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	id, err := v.Verify(ctx, signGoogleToken(t, key, "k1", valid))
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if id.Email != "asha@example.com" || id.Name != "Asha" {
		t.Errorf("identity = %+v", id)
	}

	// keys are cached between verifications
	if _, err := v.Verify(ctx, signGoogleToken(t, key, "k1", valid)); err != nil {
		t.Fatalf("second Verify() error: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("JWKS fetched %d times, want 1", n)
	}

	otherKey, _ := rsa.GenerateKey(rand.Reader, 2048)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Wrong audience", token: signGoogleToken(t, key, "k1", with(valid, "aud", "someone-else"))},
		{name: "Wrong issuer", token: signGoogleToken(t, key, "k1", with(valid, "iss", "https://evil.example.com"))},
		{name: "Expired", token: signGoogleToken(t, key, "k1", with(valid, "exp", time.Now().Add(-time.Hour).Unix()))},
		{name: "Unknown key", token: signGoogleToken(t, key, "k2", valid)},
		{name: "Bad signature", token: signGoogleToken(t, otherKey, "k1", valid)},
		{name: "HMAC token", token: hmacToken(t, valid)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(ctx, tt.token); err == nil {
				t.Error("expected Verify() to fail")
			}
		})
	}
}

func TestMaxAge(t *testing.T) {
	tests := map[string]time.Duration{
		"public, max-age=19800, must-revalidate": 19800 * time.Second,
		"no-cache":                               time.Hour,
		"":                                       time.Hour,
		"max-age=abc":                            time.Hour,
	}
	for header, want := range tests {
		if got := maxAge(header); got != want {
			t.Errorf("maxAge(%q) = %s, want %s", header, got, want)
		}
	}
}

func with(c jwt.MapClaims, k string, v any) jwt.MapClaims {
	out := jwt.MapClaims{}
	for key, val := range c {
		out[key] = val
	}
	out[k] = v
	return out
}

func hmacToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = "k1"
	s, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}
