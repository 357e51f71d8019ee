package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level mesafina configuration, corresponding to .mesafina.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	DBPath            string       `yaml:"db_path" koanf:"db_path"`
	ListenAddr        string       `yaml:"listen_addr" koanf:"listen_addr"`
	DefaultLocale     string       `yaml:"default_locale" koanf:"default_locale"`
	SessionSecret     string       `yaml:"session_secret" koanf:"session_secret"`
	AllowedOrigins    []string     `yaml:"allowed_origins" koanf:"allowed_origins"`
	Agent             AgentConfig  `yaml:"agent" koanf:"agent"`
}

// AgentConfig holds tuning for the conversational agent.
type AgentConfig struct {
	Temperature float64 `yaml:"temperature" koanf:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" koanf:"max_tokens"`
}
