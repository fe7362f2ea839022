// Package config holds the tunables for cellrope: rope text-buffer sizing,
// invariant checking, registry behaviour and logging.
//
// Configuration comes from three places, applied in order:
//
//  1. Default()
//  2. a TOML or YAML file passed to Load
//  3. CELLROPE_* environment variables applied by ApplyEnv
//
// Call Validate after the last step.
package config

import (
	"errors"
	"fmt"

	"github.com/dshills/cellrope/internal/logging"
)

// Errors returned by configuration operations.
var (
	// ErrValidationFailed indicates a value is outside its allowed range.
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrUnsupportedFormat indicates a file extension Load cannot parse.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// MaxExpansionFactor bounds Rope.ExpansionFactor.
const MaxExpansionFactor = 16

// Config is the full configuration.
type Config struct {
	Rope     RopeConfig     `toml:"rope" yaml:"rope"`
	Registry RegistryConfig `toml:"registry" yaml:"registry"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

// RopeConfig configures rope construction.
type RopeConfig struct {
	// ExpansionFactor is the initial UTF-16 units reserved per cell when
	// building text.
	ExpansionFactor int `toml:"expansion_factor" yaml:"expansion_factor"`

	// CheckInvariants verifies segment bookkeeping after every mutation.
	CheckInvariants bool `toml:"check_invariants" yaml:"check_invariants"`
}

// RegistryConfig configures the complex character registry and encoder.
type RegistryConfig struct {
	// Normalize NFC-normalizes clusters before interning.
	Normalize bool `toml:"normalize" yaml:"normalize"`

	// AmbiguousWide treats East Asian ambiguous-width characters as wide.
	AmbiguousWide bool `toml:"ambiguous_wide" yaml:"ambiguous_wide"`

	// Limit caps live registry codes; 0 means the full 16-bit space.
	Limit int `toml:"limit" yaml:"limit"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Rope: RopeConfig{
			ExpansionFactor: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	var errs []error
	if c.Rope.ExpansionFactor < 1 || c.Rope.ExpansionFactor > MaxExpansionFactor {
		errs = append(errs, fmt.Errorf("%w: rope.expansion_factor must be in [1, %d], got %d",
			ErrValidationFailed, MaxExpansionFactor, c.Rope.ExpansionFactor))
	}
	if c.Registry.Limit < 0 || c.Registry.Limit > 1<<16 {
		errs = append(errs, fmt.Errorf("%w: registry.limit must be in [0, 65536], got %d",
			ErrValidationFailed, c.Registry.Limit))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: logging.level: %v", ErrValidationFailed, err))
	}
	return errors.Join(errs...)
}

// LogLevel returns the parsed logging level, falling back to info.
func (c *Config) LogLevel() logging.Level {
	lvl, _ := logging.ParseLevel(c.Logging.Level)
	return lvl
}
