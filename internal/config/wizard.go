package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .mesafina.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to mesafina! Let's configure your reservation desk.")
	fmt.Println()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	preset := providerPresets[provider]

	// 2. Database path.
	dbPrompt := promptui.Prompt{
		Label:   "SQLite database path",
		Default: "mesafina.db",
	}
	dbPath, err := dbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("db path: %w", err)
	}

	// 3. Listen address.
	addrPrompt := promptui.Prompt{
		Label:   "HTTP listen address",
		Default: ":8080",
	}
	listenAddr, err := addrPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("listen address: %w", err)
	}

	// 4. Default locale.
	localePrompt := promptui.Select{
		Label: "Default locale",
		Items: SupportedLocales,
	}
	_, locale, err := localePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("locale selection: %w", err)
	}

	// Build the config.
	cfg := &Config{
		Provider:          provider,
		Model:             preset.Model,
		EmbeddingProvider: provider,
		EmbeddingModel:    preset.EmbeddingModel,
		DBPath:            dbPath,
		ListenAddr:        listenAddr,
		DefaultLocale:     locale,
		SessionSecret:     newSessionSecret(),
		AllowedOrigins:    []string{"*"},
		Agent: AgentConfig{
			Temperature: 0.2,
			MaxTokens:   1024,
		},
	}

	// Check for API key.
	envVar := APIKeyEnvVar(provider)
	if envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running mesafina serve.\n", envVar)
		}
	}

	// Save to .mesafina.yml.
	configPath := ".mesafina.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// newSessionSecret generates a random hex secret for dashboard cookies.
func newSessionSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
