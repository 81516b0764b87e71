// Package config provides Viper-based configuration loading for the mystery room server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ListenerConfig holds TCP listener settings.
type ListenerConfig struct {
	// Host is the bind address for the listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the listener. Zero binds a random port.
	Port int `mapstructure:"port"`
	// WriteTimeout bounds a single outbound write. Zero disables the deadline.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (l ListenerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameConfig holds room and content settings.
type GameConfig struct {
	// ScriptsDir is the directory scanned for script files at startup.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// DefaultPlayerCount is the room's player count before the host changes it.
	DefaultPlayerCount int `mapstructure:"default_player_count"`
	// MinPlayerCount is the smallest player count the host may configure.
	MinPlayerCount int `mapstructure:"min_player_count"`
	// MaxPlayerCount is the largest player count the host may configure.
	MaxPlayerCount int `mapstructure:"max_player_count"`
}

// Config is the top-level application configuration.
type Config struct {
	Listener ListenerConfig `mapstructure:"listener"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateListener(c.Listener); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateListener(l ListenerConfig) error {
	var errs []string
	if l.Port < 0 || l.Port > 65535 {
		errs = append(errs, fmt.Sprintf("listener.port must be 0-65535, got %d", l.Port))
	}
	if l.WriteTimeout < 0 {
		errs = append(errs, "listener.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.ScriptsDir == "" {
		errs = append(errs, "game.scripts_dir must not be empty")
	}
	if g.MinPlayerCount < 1 {
		errs = append(errs, fmt.Sprintf("game.min_player_count must be >= 1, got %d", g.MinPlayerCount))
	}
	if g.MaxPlayerCount < g.MinPlayerCount {
		errs = append(errs, "game.max_player_count must not be less than game.min_player_count")
	}
	if g.DefaultPlayerCount < g.MinPlayerCount || g.DefaultPlayerCount > g.MaxPlayerCount {
		errs = append(errs, fmt.Sprintf("game.default_player_count must be within [%d, %d], got %d",
			g.MinPlayerCount, g.MaxPlayerCount, g.DefaultPlayerCount))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadOrDefault behaves like Load but falls back to defaults plus environment
// overrides when path does not exist.
//
// Postcondition: Returns a valid Config or a non-nil error.
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("checking config file: %w", err)
		}
	}
	return LoadFromViper(newViper())
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with MYSTERY_ prefix
	v.SetEnvPrefix("MYSTERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listener.host", "0.0.0.0")
	v.SetDefault("listener.port", 5000)
	v.SetDefault("listener.write_timeout", "0s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("game.scripts_dir", "content/scripts")
	v.SetDefault("game.default_player_count", 4)
	v.SetDefault("game.min_player_count", 4)
	v.SetDefault("game.max_player_count", 6)
}
