package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
arena:
  api_key: test-key
models:
  - name: naive
    url: http://naive:8000
    model_name: example/naive-forecast
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Arena.PollInterval != 60*time.Second {
		t.Fatalf("unexpected poll interval %v", cfg.Arena.PollInterval)
	}
	if cfg.Journal.Type != "none" {
		t.Fatalf("unexpected journal type %q", cfg.Journal.Type)
	}
	if len(cfg.Forecaster.QuantileLevels) != 9 {
		t.Fatalf("unexpected quantile levels %v", cfg.Forecaster.QuantileLevels)
	}
	if cfg.Models[0].Hosting != "self-hosted" {
		t.Fatalf("model defaults not applied: %+v", cfg.Models[0])
	}
}

func TestLoadRejectsMissingModels(t *testing.T) {
	_, err := Load(writeConfig(t, "arena:\n  api_key: k\n"))
	if err == nil {
		t.Fatalf("expected validation error for empty models")
	}
}

func TestLoadRejectsJournalWithoutBackend(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+"journal:\n  type: kafka\n"))
	if err == nil {
		t.Fatalf("expected error for kafka journal without brokers")
	}
}

func TestLoadRejectsLongContextTTL(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+"cache:\n  enabled: true\n  context_ttl: 120s\n"))
	if err == nil {
		t.Fatalf("expected error for context_ttl above poll_interval")
	}

	cfg, err := Load(writeConfig(t, minimalYAML+"cache:\n  enabled: true\n"))
	if err != nil {
		t.Fatalf("default ttl must be valid: %v", err)
	}
	if cfg.Cache.ContextTTL >= cfg.Arena.PollInterval {
		t.Fatalf("default ttl %v not below poll interval %v", cfg.Cache.ContextTTL, cfg.Arena.PollInterval)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("API_UPLOAD_KEY", "env-key")
	t.Setenv("POLL_INTERVAL", "15s")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Arena.APIKey != "env-key" {
		t.Fatalf("env key not applied: %q", cfg.Arena.APIKey)
	}
	if cfg.Arena.PollInterval != 15*time.Second {
		t.Fatalf("env poll interval not applied: %v", cfg.Arena.PollInterval)
	}
}

func TestRequireAPIKey(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Fatalf("expected error when api key is empty")
	}
	cfg.Arena.APIKey = "k"
	if err := cfg.RequireAPIKey(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
