package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper's search path and environment binding. If
// configFile is empty, standard locations are searched for an explicit
// mcptrace.yaml/.yml, mirroring the teacher's avoidance of Viper's
// built-in SetConfigName matching a same-named binary with no extension.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("mcptrace")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MCPTRACE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindEnvKeys()
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{".", filepath.Join(home, ".mcptrace"), "/etc/mcptrace"}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "mcptrace"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func bindEnvKeys() {
	_ = viper.BindEnv("ipc_socket")
	_ = viper.BindEnv("max_logs")
	_ = viper.BindEnv("queue_capacity")
	_ = viper.BindEnv("overflow_cap")
	_ = viper.BindEnv("initial_backoff")
	_ = viper.BindEnv("max_backoff")
	_ = viper.BindEnv("stats_interval")
	_ = viper.BindEnv("tick_rate")
	_ = viper.BindEnv("metrics_addr")
}

// Load reads the configuration file (if any), applies environment
// overrides, fills defaults, and validates the result.
func Load() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the path of the config file that was loaded, or
// empty if none was found (env/flags/defaults only).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
