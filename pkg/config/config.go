// Package config loads the optional formkit configuration file. JSON and YAML
// are both accepted; command-line flags override file values.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/engine"
)

// Config is the top-level configuration document.
type Config struct {
	Store  Store  `json:"store" yaml:"store"`
	Engine Engine `json:"engine" yaml:"engine"`
	Log    Log    `json:"log" yaml:"log"`
}

// Store selects the saved forms backend.
type Store struct {
	Driver string `json:"driver" yaml:"driver" validate:"oneof=file sqlite badger"`
	Path   string `json:"path" yaml:"path" validate:"required"`
}

// Engine tunes recomputation.
type Engine struct {
	MaxPasses int `json:"maxPasses" yaml:"maxPasses" validate:"gte=1,lte=10000"`
}

// Log configures the CLI logger.
type Log struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store: Store{
			Driver: "file",
			Path:   DefaultStorePath(),
		},
		Engine: Engine{MaxPasses: engine.DefaultMaxPasses},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// DefaultStorePath is forms.json under the user config directory, or in the
// working directory when that cannot be resolved.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "forms.json"
	}
	return filepath.Join(dir, "formkit", "forms.json")
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over cfg, trying JSON first and then YAML, and
// validates the result.
func Parse(data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, cfg); err != nil {
			if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
				return errors.New("invalid JSON or YAML")
			}
		}
	}
	return cfg.Validate()
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}
