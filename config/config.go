// Package config handles configuration loading and defaults.
package config

import "github.com/deepscout/deepscout/logger"

// Config is the root configuration structure.
type Config struct {
	Research  ResearchConfig  `json:"research" yaml:"research"`
	Providers ProvidersConfig `json:"providers" yaml:"providers"`
	Memory    MemoryConfig    `json:"memory,omitempty" yaml:"memory,omitempty"`
	Search    SearchConfig    `json:"search,omitempty" yaml:"search,omitempty"`
	Logging   LoggingConfig   `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// ResearchConfig contains research run defaults.
type ResearchConfig struct {
	Provider       string                  `json:"provider" yaml:"provider"` // openai, openrouter, anthropic
	ModelName      string                  `json:"modelName,omitempty" yaml:"modelName,omitempty"`
	OutputDir      string                  `json:"outputDir,omitempty" yaml:"outputDir,omitempty"` // defaults to ./output
	MaxTokens      int                     `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
	Temperature    *float64                `json:"temperature,omitempty" yaml:"temperature,omitempty"` // sampling temperature, explicit 0 is honored
	MinCallGapMS   int                     `json:"minCallGapMs,omitempty" yaml:"minCallGapMs,omitempty"` // minimum ms between LLM calls
	LeadMaxSteps   int                     `json:"leadMaxSteps,omitempty" yaml:"leadMaxSteps,omitempty"`
	SubMaxSteps    int                     `json:"subMaxSteps,omitempty" yaml:"subMaxSteps,omitempty"`
	EditorMaxSteps int                     `json:"editorMaxSteps,omitempty" yaml:"editorMaxSteps,omitempty"`
	Reflection     *bool                   `json:"reflection,omitempty" yaml:"reflection,omitempty"` // interleaved thinking, default on
	Models         map[string]*ModelConfig `json:"models,omitempty" yaml:"models,omitempty"`         // role → provider/model override
}

// ReflectionEnabled reports whether interleaved reflection is on.
// An unset field means enabled.
func (r ResearchConfig) ReflectionEnabled() bool {
	return r.Reflection == nil || *r.Reflection
}

// SamplingTemperature returns the configured temperature, falling back
// to the default when the field was never set.
func (r ResearchConfig) SamplingTemperature() float64 {
	if r.Temperature == nil {
		return defaultTemperature
	}
	return *r.Temperature
}

// ModelConfig maps an agent role to a concrete provider and model.
type ModelConfig struct {
	Provider  string `json:"provider" yaml:"provider"`
	ModelName string `json:"modelName" yaml:"modelName"`
}

// ProvidersConfig contains provider API configurations.
type ProvidersConfig struct {
	OpenAI     *ProviderConfig `json:"openai,omitempty" yaml:"openai,omitempty"`
	OpenRouter *ProviderConfig `json:"openrouter,omitempty" yaml:"openrouter,omitempty"`
	Anthropic  *ProviderConfig `json:"anthropic,omitempty" yaml:"anthropic,omitempty"`
}

// ProviderConfig contains API credentials for a provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey" yaml:"apiKey"`
	APIBase string `json:"apiBase,omitempty" yaml:"apiBase,omitempty"` // optional custom base URL
}

// MemoryConfig controls the turn memory store and its curator.
type MemoryConfig struct {
	MaxTurns      int `json:"maxTurns,omitempty" yaml:"maxTurns,omitempty"`           // summarize when real turns exceed this
	KeepLastTurns int `json:"keepLastTurns,omitempty" yaml:"keepLastTurns,omitempty"` // verbatim turns preserved past the boundary
	AutosaveEvery int `json:"autosaveEvery,omitempty" yaml:"autosaveEvery,omitempty"` // persist every N appends, 0 disables
}

// SearchConfig contains web search configuration.
type SearchConfig struct {
	APIKey     string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"` // Tavily API key
	MaxResults int    `json:"maxResults,omitempty" yaml:"maxResults,omitempty"`
	Depth      string `json:"depth,omitempty" yaml:"depth,omitempty"` // basic or advanced
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Stdout  bool   `json:"stdout,omitempty" yaml:"stdout,omitempty"` // log to stderr/stdout
	File    string `json:"file,omitempty" yaml:"file,omitempty"`     // log file path
}

// BuildLoggerConfig converts the logging section into a logger.Config.
func (c *Config) BuildLoggerConfig() logger.Config {
	return logger.Config{
		Enabled: c.Logging.Enabled == nil || *c.Logging.Enabled,
		Level:   c.Logging.Level,
		Stdout:  c.Logging.Stdout,
		File:    c.Logging.File,
	}
}
