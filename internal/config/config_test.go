package config

import (
	"testing"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without a JWT secret")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CLINIC_AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("database.sslmode = %q", cfg.Database.SSLMode)
	}
	if cfg.Auth.TokenExpiry.Hours() != 24 {
		t.Errorf("auth.token_expiry = %s, want 24h", cfg.Auth.TokenExpiry)
	}
	if cfg.RateLimit.Burst != 30 {
		t.Errorf("rate_limit.burst = %d, want 30", cfg.RateLimit.Burst)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CLINIC_AUTH_JWT_SECRET", "test-secret")
	t.Setenv("CLINIC_SERVER_PORT", "9090")
	t.Setenv("CLINIC_DATABASE_HOST", "db.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("auth.jwt_secret = %q, want test-secret", cfg.Auth.JWTSecret)
	}
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	t.Setenv("CLINIC_AUTH_JWT_SECRET", "test-secret")
	t.Setenv("CLINIC_SERVER_MODE", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted server.mode=verbose")
	}
}
