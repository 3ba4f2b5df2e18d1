package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	SetConfigDir(t.TempDir())
	defer SetConfigDir("")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Research.Provider != defaultProvider {
		t.Fatalf("provider = %q", cfg.Research.Provider)
	}
	if cfg.Memory.MaxTurns != defaultMaxTurns || cfg.Memory.KeepLastTurns != defaultKeepLastTurns {
		t.Fatalf("memory defaults = %+v", cfg.Memory)
	}
	if cfg.Research.Reflection == nil || !*cfg.Research.Reflection {
		t.Fatal("reflection should default on")
	}
}

func TestDefaultConfigSetsPointerFields(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Research.Reflection == nil || !*cfg.Research.Reflection {
		t.Fatal("reflection should default on without going through Load")
	}
	if cfg.Research.Temperature == nil || *cfg.Research.Temperature != defaultTemperature {
		t.Fatalf("temperature = %v", cfg.Research.Temperature)
	}
}

func TestResearchConfigAccessorsOnUnsetFields(t *testing.T) {
	var r ResearchConfig
	if !r.ReflectionEnabled() {
		t.Fatal("unset reflection should read as enabled")
	}
	if got := r.SamplingTemperature(); got != defaultTemperature {
		t.Fatalf("unset temperature = %v", got)
	}
	off := false
	zero := 0.0
	r.Reflection = &off
	r.Temperature = &zero
	if r.ReflectionEnabled() {
		t.Fatal("explicit false should read as disabled")
	}
	if got := r.SamplingTemperature(); got != 0 {
		t.Fatalf("explicit zero temperature = %v", got)
	}
}

func TestLoadFileOverridesAndEnvWins(t *testing.T) {
	dir := t.TempDir()
	SetConfigDir(dir)
	defer SetConfigDir("")

	yaml := `
research:
  provider: openai
  leadMaxSteps: 7
  temperature: 0
memory:
  maxTurns: 4
  keepLastTurns: 0
search:
  apiKey: from-file
providers:
  openai:
    apiKey: file-key
`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TAVILY_API_KEY", "from-env")
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Research.Provider != "openai" || cfg.Research.LeadMaxSteps != 7 {
		t.Fatalf("file overrides lost: %+v", cfg.Research)
	}
	// keepLastTurns: 0 is an explicit, valid setting.
	if cfg.Memory.MaxTurns != 4 || cfg.Memory.KeepLastTurns != 0 {
		t.Fatalf("memory = %+v", cfg.Memory)
	}
	// So is temperature: 0, which must not fall back to the default.
	if cfg.Research.Temperature == nil || *cfg.Research.Temperature != 0 {
		t.Fatalf("temperature = %v", cfg.Research.Temperature)
	}
	if cfg.Search.APIKey != "from-env" {
		t.Fatalf("env should beat file for credentials: %q", cfg.Search.APIKey)
	}
	key, _ := cfg.ProviderCredentials("openai")
	if key != "env-key" {
		t.Fatalf("openai key = %q", key)
	}
}

func TestModelForRoleOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Research.Models = map[string]*ModelConfig{
		"subagent": {Provider: "openai", ModelName: "gpt-4.1-mini"},
		"editor":   {ModelName: "anthropic/claude-haiku"},
	}

	p, m := cfg.ModelFor("subagent")
	if p != "openai" || m != "gpt-4.1-mini" {
		t.Fatalf("subagent override = %s/%s", p, m)
	}
	p, m = cfg.ModelFor("editor")
	if p != cfg.Research.Provider || m != "anthropic/claude-haiku" {
		t.Fatalf("partial override = %s/%s", p, m)
	}
	p, m = cfg.ModelFor("lead")
	if p != cfg.Research.Provider || m != cfg.Research.ModelName {
		t.Fatalf("fallback = %s/%s", p, m)
	}
}
