package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "SERVER_PORT", "DATABASE_URL", "JWT_ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES",
		"MODEL_DIR", "MODEL_PATH", "ARTIFACTS_REQUIRED", "ALLOWED_ORIGINS", "CURRENCY_SYMBOL", "NATS_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Database.URL != "sqlite:///./sql_app.db" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute || cfg.Auth.Algorithm != "HS256" {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Artifacts.ModelPath != "models/model.json" || !cfg.Artifacts.Required {
		t.Errorf("Artifacts = %+v", cfg.Artifacts)
	}
	if !cfg.Server.AllowAllOrigins() {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Prediction.CurrencySymbol != "₹" {
		t.Errorf("CurrencySymbol = %q", cfg.Prediction.CurrencySymbol)
	}
	if cfg.Events.NATSURL != "" {
		t.Errorf("NATS should be disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("ARTIFACTS_REQUIRED", "false")
	t.Setenv("MODEL_DIR", "/srv/models")
	t.Setenv("MODEL_PATH", "")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com/ , https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 5*time.Minute {
		t.Errorf("TokenTTL = %s", cfg.Auth.TokenTTL)
	}
	if cfg.Artifacts.Required {
		t.Error("ARTIFACTS_REQUIRED=false not applied")
	}
	if cfg.Artifacts.ModelPath != "/srv/models/model.json" {
		t.Errorf("ModelPath = %q", cfg.Artifacts.ModelPath)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.Server.AllowedOrigins, want)
	}
}

func TestLoad_InvalidAlgorithm(t *testing.T) {
	t.Setenv("JWT_ALGORITHM", "none")
	if _, err := Load(); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
}
