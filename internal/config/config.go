// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// package config loads and persists the console configuration. Lookup is
// layered: explicit --config flag, then the user config directory, then a
// system-wide path, then the current directory, then environment variables
// prefixed with TERRADESK_.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds every setting the console understands. The zero value is not
// usable; defaults are supplied through LoadConfig.
type Config struct {
	API struct {
		// BaseURL is the root of the TerraDesk REST API, e.g.
		// https://terradesk.example.com/api.
		BaseURL string `mapstructure:"base_url" yaml:"base_url"`
		// TimeoutSeconds is the blanket per-request timeout.
		TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		// InsecureSkipVerify disables TLS certificate checks. Lab use only.
		InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	} `mapstructure:"api" yaml:"api"`
	State struct {
		// Type selects the local state store backend: sqlite, mysql or postgres.
		Type string `mapstructure:"type" yaml:"type"`
		// DSN is the data source name for the state store.
		DSN string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"state" yaml:"state"`
	Language string `mapstructure:"language" yaml:"language"`
	Theme    string `mapstructure:"theme" yaml:"theme"`
	Debug    bool   `mapstructure:"debug" yaml:"debug"`
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "TerraDesk")
		default: // Linux, macOS, etc.
			configDir = "/etc/terradesk"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "terradesk")
	}

	return filepath.Join(configDir, "terradesk.yaml"), nil
}

// LoadConfig builds a configuration value of type T from defaults, config
// files, environment variables and the command's flags, in ascending
// precedence.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("terradesk")
	v.SetConfigType("yaml")

	// An explicit --config path has the highest precedence among files.
	if explicitPath != nil {
		v.SetConfigFile(*explicitPath)
	}

	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; the console runs on defaults until the
		// first write. Anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("terradesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// WriteConfigFile persists the configuration to the user (or system) config
// path, creating the directory as needed.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file may carry connection strings.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}

	return nil
}
