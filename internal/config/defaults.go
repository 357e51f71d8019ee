package config

// providerPresets maps each provider to its default model choices.
var providerPresets = map[ProviderType]struct {
	Model          string
	EmbeddingModel string
}{
	ProviderOpenAI: {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// SupportedLocales are the locale codes the normalizer and the
// disambiguation prompts ship tables for.
var SupportedLocales = []string{"en", "es", "de"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		DBPath:            "mesafina.db",
		ListenAddr:        ":8080",
		DefaultLocale:     "en",
		AllowedOrigins:    []string{"*"},
		Agent: AgentConfig{
			Temperature: 0.2,
			MaxTokens:   1024,
		},
	}
}
