package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/stewythe1st/Stock-Cutting/internal/model"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. STOCKCUT_MU.
const EnvPrefix = "STOCKCUT_"

// DefaultConfigPath is the config file used when none is given.
const DefaultConfigPath = "stockcut.yaml"

// InputConfig describes where the shapes come from.
type InputConfig struct {
	Path           string  `json:"path" yaml:"path" env:"PATH"`
	Name           string  `json:"name" yaml:"name" env:"NAME"`
	SheetWidth     int     `json:"sheet_width" yaml:"sheet_width" env:"SHEET_WIDTH" validate:"min=0"`             // 0 keeps the width from the input file
	CellSize       float64 `json:"cell_size" yaml:"cell_size" env:"CELL_SIZE" validate:"gt=0"`                  // DXF drawing units per grid cell
	OverlapPenalty int     `json:"overlap_penalty" yaml:"overlap_penalty" env:"OVERLAP_PENALTY" validate:"min=0"` // 0 uses the sheet width
}

// Config is the complete configuration of a stockcut invocation.
type Config struct {
	Input     InputConfig           `json:"input" yaml:"input" envPrefix:"INPUT_"`
	Evolution model.EvolutionConfig `json:"evolution" yaml:"evolution"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Input: InputConfig{
			CellSize: 1.0,
		},
		Evolution: model.DefaultEvolutionConfig(),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and the options that depend on each other.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	ev := c.Evolution
	if ev.Termination == model.TerminationNumEvals && ev.FitnessEvals < ev.Mu+ev.Lambda {
		return fmt.Errorf("invalid config: fitness_evals %d leaves no room for one generation (mu %d + lambda %d)",
			ev.FitnessEvals, ev.Mu, ev.Lambda)
	}
	return nil
}

// LoadConfig reads the configuration with priority env > file > defaults.
// A missing file is not an error. The result is not validated; callers apply
// their own overrides first and then call Validate.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// SaveConfig writes cfg as YAML, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
