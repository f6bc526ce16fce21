// Package config loads automata settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "AUTOMATA_"

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config holds the CLI and editor settings.
type Config struct {
	Kind      string  `yaml:"kind" env:"KIND" validate:"oneof=dfa nfa"`
	LogLevel  string  `yaml:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error disabled"`
	LogFormat string  `yaml:"log_format" env:"LOG_FORMAT" validate:"oneof=console json"`
	LogFile   string  `yaml:"log_file" env:"LOG_FILE"` // editor only; empty discards its logs
	Storage   Storage `yaml:"storage" envPrefix:"STORAGE_"`
}

// Storage selects where the automaton library lives.
type Storage struct {
	Driver      string `yaml:"driver" env:"DRIVER" validate:"oneof=file sqlite redis"`
	Path        string `yaml:"path" env:"PATH" validate:"required_unless=Driver redis"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR" validate:"required_if=Driver redis"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Kind:      "dfa",
		LogLevel:  "info",
		LogFormat: "console",
		Storage: Storage{
			Driver:      DriverFile,
			Path:        defaultLibraryPath(),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "automata:",
		},
	}
}

func defaultLibraryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "automata-library"
	}
	return filepath.Join(dir, "automata", "library")
}

// Load applies, in order: defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), then AUTOMATA_* environment
// variables. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
