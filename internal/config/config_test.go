package config

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cellrope/internal/logging"
)

// memFS is an in-memory file system for testing.
type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Rope.ExpansionFactor)
	assert.Equal(t, logging.LevelInfo, cfg.LogLevel())
}

func TestLoadTOML(t *testing.T) {
	fsys := memFS{"/cellrope.toml": `
[rope]
expansion_factor = 4
check_invariants = true

[registry]
normalize = true
limit = 1024

[logging]
level = "debug"
`}

	cfg, err := LoadFS(fsys, "/cellrope.toml")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Rope.ExpansionFactor)
	assert.True(t, cfg.Rope.CheckInvariants)
	assert.True(t, cfg.Registry.Normalize)
	assert.False(t, cfg.Registry.AmbiguousWide)
	assert.Equal(t, 1024, cfg.Registry.Limit)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel())
	require.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	fsys := memFS{"/cellrope.yaml": `
registry:
  ambiguous_wide: true
logging:
  level: warn
`}

	cfg, err := LoadFS(fsys, "/cellrope.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.Registry.AmbiguousWide)
	assert.Equal(t, 3, cfg.Rope.ExpansionFactor, "unset fields keep their defaults")
	assert.Equal(t, logging.LevelWarn, cfg.LogLevel())
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := LoadFS(memFS{"/empty.yml": ""}, "/empty.yml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	fsys := memFS{
		"/bad.toml":     "[rope\nexpansion_factor = 4",
		"/unknown.toml": "[rope]\nexpansion = 4\n",
		"/unknown.yaml": "rope:\n  expansion: 4\n",
		"/cfg.json":     "{}",
	}

	tests := []struct {
		name   string
		path   string
		target error
		parse  bool
	}{
		{"missing", "/nope.toml", ErrFileNotFound, false},
		{"syntax", "/bad.toml", nil, true},
		{"unknown toml key", "/unknown.toml", nil, true},
		{"unknown yaml key", "/unknown.yaml", nil, true},
		{"format", "/cfg.json", ErrUnsupportedFormat, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(fsys, tt.path)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			var pe *ParseError
			assert.Equal(t, tt.parse, errors.As(err, &pe))
			if tt.parse {
				assert.Equal(t, tt.path, pe.Path)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	e := &ParseError{Path: "a.toml", Line: 2, Column: 5, Message: "boom"}
	assert.Equal(t, "parse error in a.toml at line 2, column 5: boom", e.Error())
	e.Column = 0
	assert.Equal(t, "parse error in a.toml at line 2: boom", e.Error())
	e.Line = 0
	assert.Equal(t, "parse error in a.toml: boom", e.Error())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"factor zero", func(c *Config) { c.Rope.ExpansionFactor = 0 }, false},
		{"factor max", func(c *Config) { c.Rope.ExpansionFactor = MaxExpansionFactor }, true},
		{"factor too big", func(c *Config) { c.Rope.ExpansionFactor = MaxExpansionFactor + 1 }, false},
		{"negative limit", func(c *Config) { c.Registry.Limit = -1 }, false},
		{"full limit", func(c *Config) { c.Registry.Limit = 1 << 16 }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidationFailed)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CELLROPE_ROPE_EXPANSION_FACTOR":   "5",
		"CELLROPE_ROPE_CHECK_INVARIANTS":   "yes",
		"CELLROPE_REGISTRY_AMBIGUOUS_WIDE": "on",
		"CELLROPE_LOG_LEVEL":               "error",
		"CELLROPE_UNRELATED":               "ignored",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, 5, cfg.Rope.ExpansionFactor)
	assert.True(t, cfg.Rope.CheckInvariants)
	assert.True(t, cfg.Registry.AmbiguousWide)
	assert.False(t, cfg.Registry.Normalize)
	assert.Equal(t, logging.LevelError, cfg.LogLevel())
}

func TestApplyEnvErrors(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		if k == "CELLROPE_REGISTRY_NORMALIZE" {
			return "maybe", true
		}
		return "", false
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CELLROPE_REGISTRY_NORMALIZE")

	t.Setenv("CELLROPE_ROPE_EXPANSION_FACTOR", "three")
	assert.Error(t, Default().ApplyEnv())
}
