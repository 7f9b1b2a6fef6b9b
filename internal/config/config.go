package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eerhardt/nni-mlnet/internal/hparams"
	"github.com/eerhardt/nni-mlnet/internal/report"
)

type Config struct {
	Pipeline        Pipeline         `yaml:"pipeline"`
	Hyperparameters []Hyperparameter `yaml:"hyperparameters"`
	Metrics         Metrics          `yaml:"metrics"`
}

// Pipeline describes the training process launched for each trial.
type Pipeline struct {
	Command        []string          `yaml:"command"`
	Image          string            `yaml:"image"`
	Env            map[string]string `yaml:"env"`
	TimeoutMinutes int               `yaml:"timeout_minutes"`
	MetricFile     string            `yaml:"metric_file"`
	EnvPrefix      string            `yaml:"env_prefix"`
	CPULimit       float64           `yaml:"cpu_limit"`
	MemoryLimit    int64             `yaml:"memory_limit"`
}

// Hyperparameter declares one tunable option. Default is kept as text and
// parsed against Type during validation.
type Hyperparameter struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default string `yaml:"default"`
}

type Metrics struct {
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Pipeline.Command) == 0 {
		return fmt.Errorf("pipeline: command is required")
	}
	if cfg.Pipeline.TimeoutMinutes < 0 {
		return fmt.Errorf("pipeline: timeout_minutes must not be negative")
	}
	if cfg.Pipeline.TimeoutMinutes == 0 {
		cfg.Pipeline.TimeoutMinutes = 30
	}
	if cfg.Pipeline.MetricFile == "" {
		cfg.Pipeline.MetricFile = "metric.txt"
	}
	if cfg.Pipeline.EnvPrefix == "" {
		cfg.Pipeline.EnvPrefix = "HP_"
	}
	seen := make(map[string]bool)
	for i, h := range cfg.Hyperparameters {
		if h.Name == "" {
			return fmt.Errorf("hyperparameter %d: name is required", i)
		}
		if seen[h.Name] {
			return fmt.Errorf("hyperparameter %q: duplicate name", h.Name)
		}
		seen[h.Name] = true
		kind, err := hparams.ParseKind(h.Type)
		if err != nil {
			return fmt.Errorf("hyperparameter %q: %w", h.Name, err)
		}
		if h.Default != "" {
			if _, err := hparams.Parse(kind, h.Default); err != nil {
				return fmt.Errorf("hyperparameter %q: default: %w", h.Name, err)
			}
		}
	}
	if cfg.Metrics.Format == "" {
		cfg.Metrics.Format = "table"
	}
	if err := report.CheckFormat(cfg.Metrics.Format); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

// Timeout is the pipeline's wall-clock limit.
func (p *Pipeline) Timeout() time.Duration {
	return time.Duration(p.TimeoutMinutes) * time.Minute
}

// Specs converts the declared hyperparameters for hparams.Bind. Load has
// already validated types and defaults.
func (c *Config) Specs() []hparams.Spec {
	specs := make([]hparams.Spec, 0, len(c.Hyperparameters))
	for _, h := range c.Hyperparameters {
		kind, _ := hparams.ParseKind(h.Type)
		spec := hparams.Spec{Name: h.Name, Kind: kind}
		if h.Default != "" {
			spec.Default, _ = hparams.Parse(kind, h.Default)
		}
		specs = append(specs, spec)
	}
	return specs
}
