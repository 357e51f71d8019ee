package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesafina/mesafina/internal/config"
	"github.com/mesafina/mesafina/internal/embeddings"
	"github.com/mesafina/mesafina/internal/knowledge"
	"github.com/mesafina/mesafina/internal/llm"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `mesafina init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	apiKey := os.Getenv(config.APIKeyEnvVar(provider))
	if provider != config.ProviderOllama && apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is required for %s embeddings",
			config.APIKeyEnvVar(provider), provider)
	}
	return embeddings.NewEmbedder(string(provider), apiKey, cfg.EmbeddingModel), nil
}

// dataDir is where the knowledge base persists, next to the SQLite file.
func dataDir(cfg *config.Config) string {
	return filepath.Dir(cfg.DBPath)
}

// openKnowledgeBase builds the policy knowledge base and loads any persisted
// index. A missing index is not an error; policies can be re-ingested.
func openKnowledgeBase(cfg *config.Config) (*knowledge.KB, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	kb, err := knowledge.NewKB(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating knowledge base: %w", err)
	}

	if err := kb.Load(context.Background(), dataDir(cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load knowledge base from %s: %v\n", dataDir(cfg), err)
	}
	return kb, nil
}
