package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/sshape/sim"
)

// envPrefix prefixes every environment override, e.g. SSHAPE_BLOCK_SIZE.
const envPrefix = "SSHAPE"

// Scenario is the YAML scenario file accepted by --config.
// Absent fields keep their defaults.
type Scenario struct {
	sim.Config `yaml:",inline"`
	Seed       *int64 `yaml:"seed"`
}

// Settings is a fully resolved run configuration.
type Settings struct {
	Config sim.Config
	Seed   int64
}

// loadScenario parses a scenario file on top of base.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func loadScenario(path string, base sim.Config) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	sc := Scenario{Config: base}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
	}
	return sc, nil
}

// newViper binds c's flags and SSHAPE_* environment variables.
func newViper(c *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(c.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	return v, nil
}

// resolveSettings layers defaults, the scenario file, environment and
// explicitly set flags (lowest to highest precedence) and validates the
// result through the Config setters.
func resolveSettings(c *cobra.Command) (Settings, error) {
	v, err := newViper(c)
	if err != nil {
		return Settings{}, err
	}

	settings := Settings{Config: sim.DefaultConfig(), Seed: v.GetInt64("seed")}
	if path := v.GetString("config"); path != "" {
		sc, err := loadScenario(path, settings.Config)
		if err != nil {
			return Settings{}, err
		}
		settings.Config = sc.Config
		if sc.Seed != nil {
			settings.Seed = *sc.Seed
		}
	}
	if err := settings.Config.Validate(); err != nil {
		return Settings{}, fmt.Errorf("scenario %s: %w", v.GetString("config"), err)
	}

	cfg := &settings.Config
	if v.IsSet("block-size") {
		if err := cfg.SetBlockSize(v.GetInt("block-size")); err != nil {
			return Settings{}, err
		}
	}
	if v.IsSet("block-count") {
		if err := cfg.SetBlockCount(v.GetInt("block-count")); err != nil {
			return Settings{}, err
		}
	}
	if v.IsSet("eviction-rate") {
		if err := cfg.SetEvictionRate(v.GetFloat64("eviction-rate")); err != nil {
			return Settings{}, err
		}
	}
	if v.IsSet("write-rate") {
		if err := cfg.SetWriteRate(v.GetFloat64("write-rate")); err != nil {
			return Settings{}, err
		}
	}
	if v.IsSet("seed") {
		settings.Seed = v.GetInt64("seed")
	}
	return settings, settings.Config.Validate()
}
