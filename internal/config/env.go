package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment variable ApplyEnv reads.
const EnvPrefix = "CELLROPE_"

// envMapping maps environment variables to the fields they set.
var envMapping = map[string]func(c *Config, v string) error{
	"CELLROPE_ROPE_EXPANSION_FACTOR": func(c *Config, v string) error {
		return setInt(&c.Rope.ExpansionFactor, v)
	},
	"CELLROPE_ROPE_CHECK_INVARIANTS": func(c *Config, v string) error {
		return setBool(&c.Rope.CheckInvariants, v)
	},
	"CELLROPE_REGISTRY_NORMALIZE": func(c *Config, v string) error {
		return setBool(&c.Registry.Normalize, v)
	},
	"CELLROPE_REGISTRY_AMBIGUOUS_WIDE": func(c *Config, v string) error {
		return setBool(&c.Registry.AmbiguousWide, v)
	},
	"CELLROPE_REGISTRY_LIMIT": func(c *Config, v string) error {
		return setInt(&c.Registry.Limit, v)
	},
	"CELLROPE_LOG_LEVEL": func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	},
}

// ApplyEnv overrides fields from CELLROPE_* variables.
// Note: Empty string values are treated as valid values, not as unset.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for name, set := range envMapping {
		val, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(c, val); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func setInt(dst *int, s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

// setBool accepts the same spellings as the file formats plus yes/no/on/off.
func setBool(dst *bool, s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0", "":
		*dst = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}
