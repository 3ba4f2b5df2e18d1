package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

var configDirOverride string

// SetConfigDir overrides the config directory for the current process.
// Empty value clears the override.
func SetConfigDir(dir string) {
	configDirOverride = strings.TrimSpace(dir)
}

// ConfigDir returns the directory the config file is read from.
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".deepscout"), nil
}

// Load reads the config file, falling back to defaults when it does not
// exist. Values are unmarshalled over the defaults so absent fields keep
// their default while explicit zeros survive. Environment variables win
// over file values for credentials.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// First run, defaults plus environment is enough.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays credential environment variables onto the config.
func (c *Config) applyEnv() {
	overlay := func(pc **ProviderConfig, keyEnv, baseEnv string) {
		key := strings.TrimSpace(os.Getenv(keyEnv))
		base := strings.TrimSpace(os.Getenv(baseEnv))
		if key == "" && base == "" {
			return
		}
		if *pc == nil {
			*pc = &ProviderConfig{}
		}
		if key != "" {
			(*pc).APIKey = key
		}
		if base != "" {
			(*pc).APIBase = base
		}
	}
	overlay(&c.Providers.OpenAI, "OPENAI_API_KEY", "OPENAI_API_BASE")
	overlay(&c.Providers.OpenRouter, "OPENROUTER_API_KEY", "OPENROUTER_API_BASE")
	overlay(&c.Providers.Anthropic, "ANTHROPIC_API_KEY", "ANTHROPIC_API_BASE")

	if key := strings.TrimSpace(os.Getenv("TAVILY_API_KEY")); key != "" {
		c.Search.APIKey = key
	}
}

// ProviderCredentials returns the configured key and base URL for a
// provider name, empty strings when nothing is configured.
func (c *Config) ProviderCredentials(name string) (apiKey, apiBase string) {
	var pc *ProviderConfig
	switch name {
	case "openai":
		pc = c.Providers.OpenAI
	case "openrouter":
		pc = c.Providers.OpenRouter
	case "anthropic":
		pc = c.Providers.Anthropic
	}
	if pc == nil {
		return "", ""
	}
	return pc.APIKey, pc.APIBase
}

// ModelFor resolves the provider and model for an agent role, falling back
// to the run defaults when no per-role override exists.
func (c *Config) ModelFor(role string) (providerName, modelName string) {
	if mc, ok := c.Research.Models[role]; ok && mc != nil {
		p := mc.Provider
		if p == "" {
			p = c.Research.Provider
		}
		m := mc.ModelName
		if m == "" {
			m = c.Research.ModelName
		}
		return p, m
	}
	return c.Research.Provider, c.Research.ModelName
}
