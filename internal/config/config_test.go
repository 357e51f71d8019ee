package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.DBPath != "mesafina.db" {
		t.Errorf("expected default db_path %q, got %q", "mesafina.db", cfg.DBPath)
	}
	if cfg.DefaultLocale != "en" {
		t.Errorf("expected default locale en, got %q", cfg.DefaultLocale)
	}
	if cfg.Agent.MaxTokens != 1024 {
		t.Errorf("expected default agent.max_tokens 1024, got %d", cfg.Agent.MaxTokens)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.mesafina.yml")

	original := DefaultConfig()
	original.Provider = ProviderOllama
	original.Model = "llama3"
	original.DBPath = "/var/lib/mesafina/main.db"
	original.ListenAddr = ":9090"
	original.DefaultLocale = "es"
	original.AllowedOrigins = []string{"https://desk.example.com"}

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.DBPath != original.DBPath {
		t.Errorf("db_path: got %q, want %q", loaded.DBPath, original.DBPath)
	}
	if loaded.ListenAddr != original.ListenAddr {
		t.Errorf("listen_addr: got %q, want %q", loaded.ListenAddr, original.ListenAddr)
	}
	if loaded.DefaultLocale != original.DefaultLocale {
		t.Errorf("default_locale: got %q, want %q", loaded.DefaultLocale, original.DefaultLocale)
	}
	if len(loaded.AllowedOrigins) != 1 || loaded.AllowedOrigins[0] != original.AllowedOrigins[0] {
		t.Errorf("allowed_origins: got %v, want %v", loaded.AllowedOrigins, original.AllowedOrigins)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Override provider via env var.
	os.Setenv("MESAFINA_PROVIDER", "ollama")
	defer os.Unsetenv("MESAFINA_PROVIDER")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOllama {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOllama)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestValidateEmptyModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty model")
	}
}

func TestValidateEmptyDBPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty db_path")
	}
}

func TestValidateUnknownLocale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultLocale = "fr"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unsupported locale")
	}
}

func TestValidateTemperatureRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.Temperature = 3.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for out-of-range temperature")
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnvVar(openai) = %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("APIKeyEnvVar(ollama) = %q, want empty", got)
	}
}
