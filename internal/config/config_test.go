package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/medxfer")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("unexpected pool defaults: %d/%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for production without JWT_SECRET")
	}

	cfg.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short JWT_SECRET")
	}

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_DevWithoutSecret(t *testing.T) {
	cfg := &Config{Env: "development"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("dev mode should not require a secret: %v", err)
	}
}
