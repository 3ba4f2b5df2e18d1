package research

import (
	"testing"

	"github.com/deepscout/deepscout/config"
)

func TestNewOrchestratorFromDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Research.OutputDir = t.TempDir()

	o, err := NewOrchestrator(cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	if o.SessionID() == "" {
		t.Fatal("session id not generated")
	}
	if !o.cfg.Research.ReflectionEnabled() {
		t.Fatal("defaults should enable reflection")
	}
}

func TestOrchestratorToleratesHandBuiltConfig(t *testing.T) {
	// A config assembled field by field leaves the pointer fields nil.
	// Assembling agent options must still yield usable values.
	cfg := &config.Config{}
	cfg.Research.OutputDir = t.TempDir()

	o, err := NewOrchestrator(cfg, "bare")
	if err != nil {
		t.Fatal(err)
	}
	if !o.cfg.Research.ReflectionEnabled() {
		t.Fatal("unset reflection should read as enabled")
	}
	if o.cfg.Research.SamplingTemperature() <= 0 {
		t.Fatalf("unset temperature = %v", o.cfg.Research.SamplingTemperature())
	}
}
