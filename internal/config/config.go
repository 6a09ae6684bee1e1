// Package config provides configuration loading for loadplan.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	configloader "github.com/GabrielNunesIT/go-libs/config-loader"

	"github.com/GabrielNunesIT/loadplan/internal/adapters/loader"
	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

// DefaultFile is read when present and no explicit path is given.
const DefaultFile = "loadplan.yaml"

// EnvPrefix prefixes environment overrides, e.g. LOADPLAN_SERVER_PORT.
const EnvPrefix = "LOADPLAN_"

// Config holds the application configuration.
type Config struct {
	Load    domain.LoadConfig `koanf:"load"`
	HAR     loader.HARFilter  `koanf:"har"`
	History HistoryConfig     `koanf:"history"`
	Server  ServerConfig      `koanf:"server"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	DBPath  string `koanf:"db_path"`
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Load: domain.DefaultLoadConfig(),
		HAR:  loader.DefaultHARFilter(),
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "loadplan.db",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// Load layers the file at path (or DefaultFile when path is empty and the file
// exists) and LOADPLAN_ environment variables over the defaults.
func Load(path string) (*Config, error) {
	file, err := resolveFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if file != "" {
		cfg, err = configloader.NewConfigLoader(
			configloader.WithDefaults(Default()),
			configloader.WithFile[Config](file),
			configloader.WithEnv[Config](EnvPrefix),
		).Load()
	} else {
		cfg, err = configloader.NewConfigLoader(
			configloader.WithDefaults(Default()),
			configloader.WithEnv[Config](EnvPrefix),
		).Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	if fileExists(DefaultFile) {
		return DefaultFile, nil
	}
	return "", nil
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Load.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("load: %w", err))
	}
	if c.History.Enabled && strings.TrimSpace(c.History.DBPath) == "" {
		errs = append(errs, errors.New("history.db_path cannot be empty when history is enabled"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be within 1..65535, got %d", c.Server.Port))
	}
	return errors.Join(errs...)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
