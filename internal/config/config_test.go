package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost:5432/telecare")
	setEnv(t, "ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.ChunkIntervalMS != 3000 {
		t.Errorf("expected default chunk interval 3000ms, got %d", cfg.ChunkIntervalMS)
	}
	if cfg.TranslateTimeoutMS != 10000 {
		t.Errorf("expected default translate timeout 10000ms, got %d", cfg.TranslateTimeoutMS)
	}
	if cfg.AIModel != "gpt-4o-mini" {
		t.Errorf("expected default AI model, got %s", cfg.AIModel)
	}
}

func TestLoad_DatabaseURLRequired(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")
	_, err := Load()
	if err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidate_ProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{Env: "production", ChunkIntervalMS: 3000, TranslateTimeoutMS: 10000}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing AI_API_KEY in production")
	}

	cfg.AIAPIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_DevSkipsSecrets(t *testing.T) {
	cfg := &Config{Env: "development", ChunkIntervalMS: 3000, TranslateTimeoutMS: 10000}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error in development mode: %v", err)
	}
}

func TestValidate_ChunkIntervalPositive(t *testing.T) {
	cfg := &Config{Env: "development", ChunkIntervalMS: 0, TranslateTimeoutMS: 10000}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-positive chunk interval")
	}
}
