package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".sc2metrics"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for sc2metrics settings.
const envPrefix = "SC2METRICS"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
// The result is not validated: callers apply flag overrides first.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("input.pattern", DefaultPattern)

	v.SetDefault("output.dir", DefaultOutputDir)
	v.SetDefault("output.label", "")

	v.SetDefault("counter.start", DefaultCounterStart)
	v.SetDefault("counter.step", DefaultCounterStep)
	v.SetDefault("counter.resume", true)

	v.SetDefault("workers", DefaultWorkers)

	v.SetDefault("passes.combat", true)
	v.SetDefault("passes.actions", true)
	v.SetDefault("passes.resources", true)

	v.SetDefault("combat.engagement", DefaultEngagement)

	v.SetDefault("actions.include_other", false)
	v.SetDefault("actions.workers", []string{})
	v.SetDefault("actions.economy", []string{})
	v.SetDefault("actions.army", []string{})
	v.SetDefault("actions.tech", []string{})
}
