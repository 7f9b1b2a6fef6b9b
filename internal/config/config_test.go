package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eerhardt/nni-mlnet/internal/config"
	"github.com/eerhardt/nni-mlnet/internal/nni"
)

func TestLoadMinimal(t *testing.T) {
	cfg, err := config.Load("../../testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Pipeline.Command) != 1 || cfg.Pipeline.Command[0] != "./train.sh" {
		t.Errorf("unexpected command %v", cfg.Pipeline.Command)
	}
	if cfg.Pipeline.Timeout() != 30*time.Minute {
		t.Errorf("expected default timeout 30m, got %v", cfg.Pipeline.Timeout())
	}
	if cfg.Pipeline.MetricFile != "metric.txt" {
		t.Errorf("expected default metric file, got %q", cfg.Pipeline.MetricFile)
	}
	if cfg.Pipeline.EnvPrefix != "HP_" {
		t.Errorf("expected default env prefix, got %q", cfg.Pipeline.EnvPrefix)
	}
	if cfg.Metrics.Format != "table" {
		t.Errorf("expected default format table, got %q", cfg.Metrics.Format)
	}
	if len(cfg.Specs()) != 0 {
		t.Errorf("expected no hyperparameters, got %d", len(cfg.Specs()))
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := config.Load("../../testdata/full.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Pipeline.Image == "" {
		t.Error("expected pipeline image")
	}
	if cfg.Pipeline.Env["DATASET"] != "digits.csv" {
		t.Errorf("expected DATASET env, got %v", cfg.Pipeline.Env)
	}
	if cfg.Pipeline.Timeout() != 45*time.Minute {
		t.Errorf("expected 45m timeout, got %v", cfg.Pipeline.Timeout())
	}
	specs := cfg.Specs()
	if len(specs) != 6 {
		t.Fatalf("expected 6 hyperparameters, got %d", len(specs))
	}
	if specs[0].Name != "NumberOfIterations" || specs[0].Kind != nni.KindInt || specs[0].Default.String() != "100" {
		t.Errorf("first spec: %+v", specs[0])
	}
	if specs[3].Kind != nni.KindBool || specs[3].Default.String() != "false" {
		t.Errorf("UseSoftmax spec: %+v", specs[3])
	}
	if cfg.Metrics.Format != "markdown" {
		t.Errorf("expected markdown format, got %q", cfg.Metrics.Format)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load("nonexistent.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := config.Load("../../testdata/invalid.yaml")
	if err == nil {
		t.Error("expected error for invalid default")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no command", "pipeline: {}\n"},
		{"negative timeout", "pipeline:\n  command: [x]\n  timeout_minutes: -1\n"},
		{"unnamed hyperparameter", "pipeline:\n  command: [x]\nhyperparameters:\n  - type: int\n"},
		{"duplicate hyperparameter", "pipeline:\n  command: [x]\nhyperparameters:\n  - {name: a, type: int}\n  - {name: a, type: float}\n"},
		{"unknown type", "pipeline:\n  command: [x]\nhyperparameters:\n  - {name: a, type: tensor}\n"},
		{"unknown format", "pipeline:\n  command: [x]\nmetrics:\n  format: xml\n"},
		{"malformed yaml", "pipeline: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nni-trial.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := config.Load(path); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
