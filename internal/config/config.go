// Package config loads and validates the floe project configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config represents the project configuration
type Config struct {
	Scripts        Scripts        `mapstructure:"-"`
	Plugins        []PluginRef    `mapstructure:"-"`
	BuildOptions   BuildOptions   `mapstructure:"buildOptions"`
	InstallOptions InstallOptions `mapstructure:"installOptions"`
	DevOptions     DevOptions     `mapstructure:"devOptions"`
	Debug          bool           `mapstructure:"debug"`
}

// BuildOptions contains production build settings
type BuildOptions struct {
	BaseURL string `mapstructure:"baseUrl"`
	Dest    string `mapstructure:"dest"`
	Clean   bool   `mapstructure:"clean"`
}

// InstallOptions contains dependency installation settings
type InstallOptions struct {
	Dest string `mapstructure:"dest"`
}

// DevOptions contains dev server settings
type DevOptions struct {
	Port     int    `mapstructure:"port"`
	Hostname string `mapstructure:"hostname"`
	Open     bool   `mapstructure:"open"`
}

// ScriptError reports a malformed script entry. It carries the offending
// script id so the CLI can point the user at the exact config line.
type ScriptError struct {
	Script string
	Reason string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %q: %s", e.Script, e.Reason)
}

// Load loads configuration from file and environment variables.
// If file is empty, floe.yaml / floe.yml are searched in the working directory.
func Load(file string) (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("floe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	// Enable environment variable support with underscore replacer
	v.AutomaticEnv()
	v.SetEnvPrefix("FLOE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (if it exists)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
		log.Info().Msg("No config file found, using environment variables and defaults")
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Viper does not preserve mapping order, but script order is significant
	// (it fixes plugin registration order). Re-decode scripts and plugins
	// from the raw file.
	if used := v.ConfigFileUsed(); used != "" {
		raw, err := os.ReadFile(used)
		if err != nil {
			return nil, fmt.Errorf("error re-reading config file: %w", err)
		}
		scripts, plugins, err := decodeOrdered(raw)
		if err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", used, err)
		}
		config.Scripts = scripts
		config.Plugins = plugins
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads environment variables from a .env file
func loadEnvFile() error {
	locations := []string{
		".env",
		".env.local",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("error loading .env file from %s: %w", location, err)
			}
			log.Info().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	viperDefaults := map[string]any{
		"buildOptions.baseUrl": "/",
		"buildOptions.dest":    "build",
		"buildOptions.clean":   false,
		"installOptions.dest":  "web_modules",
		"devOptions.port":      8080,
		"devOptions.hostname":  "localhost",
		"devOptions.open":      false,
		"debug":                false,
	}
	for key, val := range viperDefaults {
		v.SetDefault(key, val)
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BuildOptions.BaseURL == "" {
		return fmt.Errorf("buildOptions.baseUrl cannot be empty")
	}

	if c.BuildOptions.Dest == "" {
		return fmt.Errorf("buildOptions.dest cannot be empty")
	}

	if c.InstallOptions.Dest == "" {
		return fmt.Errorf("installOptions.dest cannot be empty")
	}

	if c.DevOptions.Port < 1 || c.DevOptions.Port > 65535 {
		return fmt.Errorf("devOptions.port must be between 1 and 65535")
	}

	for _, s := range c.Scripts {
		if strings.TrimSpace(s.Cmd) == "" {
			return &ScriptError{Script: s.ID, Reason: "command cannot be empty"}
		}
	}

	return nil
}
