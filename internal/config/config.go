package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Artifacts  ArtifactsConfig
	Prediction PredictionConfig
	Events     EventsConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigins  []string
	StaticDir       string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
}

// AuthConfig holds token signing and identity federation settings
type AuthConfig struct {
	SecretKey      string
	Algorithm      string
	TokenTTL       time.Duration
	GoogleClientID string
	GoogleCertsURL string
}

// ArtifactsConfig locates the trained model bundle
type ArtifactsConfig struct {
	ModelDir            string
	ModelPath           string
	EncodersPath        string
	MetadataPath        string
	NeighborhoodMapPath string
	// Required makes artifact load errors fatal at startup
	Required bool
}

// PredictionConfig holds prediction output settings
type PredictionConfig struct {
	CurrencySymbol string
	HistoryLimit   int
}

// EventsConfig holds NATS settings; an empty URL disables publishing
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

const defaultSecretKey = "change-me-in-production"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	modelDir := getEnv("MODEL_DIR", "models")

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("PORT", getEnvAsInt("SERVER_PORT", 8000)),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:         getEnv("GIN_MODE", "release"),
			AllowedOrigins:  parseOrigins(getEnv("ALLOWED_ORIGINS", "*")),
			StaticDir:       getEnv("STATIC_DIR", ""),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", "sqlite:///./sql_app.db"),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
		},
		Auth: AuthConfig{
			SecretKey:      getEnv("SECRET_KEY", defaultSecretKey),
			Algorithm:      getEnv("JWT_ALGORITHM", "HS256"),
			TokenTTL:       time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
			GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleCertsURL: getEnv("GOOGLE_CERTS_URL", "https://www.googleapis.com/oauth2/v3/certs"),
		},
		Artifacts: ArtifactsConfig{
			ModelDir:            modelDir,
			ModelPath:           getEnv("MODEL_PATH", filepath.Join(modelDir, "model.json")),
			EncodersPath:        getEnv("ENCODERS_PATH", filepath.Join(modelDir, "label_encoders.json")),
			MetadataPath:        getEnv("METADATA_PATH", filepath.Join(modelDir, "metadata.json")),
			NeighborhoodMapPath: getEnv("NEIGHBORHOOD_MAP_PATH", filepath.Join(modelDir, "city_neighborhood_map.json")),
			Required:            getEnvAsBool("ARTIFACTS_REQUIRED", true),
		},
		Prediction: PredictionConfig{
			CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
			HistoryLimit:   getEnvAsInt("HISTORY_LIMIT", 0),
		},
		Events: EventsConfig{
			NATSURL:       getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "lumina.predictions"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Auth.Algorithm != "HS256" && c.Auth.Algorithm != "HS384" && c.Auth.Algorithm != "HS512" {
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.Auth.Algorithm)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

// UsingDefaultSecret reports whether tokens are signed with the built-in key
func (c *Config) UsingDefaultSecret() bool {
	return c.Auth.SecretKey == defaultSecretKey
}

// AllowAllOrigins reports whether CORS is open to any origin
func (s ServerConfig) AllowAllOrigins() bool {
	return len(s.AllowedOrigins) == 1 && s.AllowedOrigins[0] == "*"
}

// parseOrigins splits a comma list, trimming spaces and trailing slashes
func parseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
