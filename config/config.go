// Package config handles loading and managing application configuration
// from YAML files, an optional .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "SMARTQR_"

// Config holds all application configuration values.
type Config struct {
	DataDir    string  `yaml:"data_dir"`
	LogLevel   string  `yaml:"log_level"`
	ErrorLevel string  `yaml:"error_level"`
	BoxSize    int     `yaml:"box_size"`
	Border     int     `yaml:"border"`
	Foreground string  `yaml:"foreground"`
	Background string  `yaml:"background"`
	LogoScale  float64 `yaml:"logo_scale"`
	History    bool    `yaml:"history"`
}

// Defaults returns a Config populated with sensible default values.
func Defaults() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return &Config{
		DataDir:    filepath.Join(homeDir, ".smartqr"),
		LogLevel:   "info",
		ErrorLevel: "M",
		BoxSize:    10,
		Border:     4,
		Foreground: "#000000",
		Background: "#ffffff",
		LogoScale:  0.20,
		History:    true,
	}
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. Environment variables with the
// SMARTQR_ prefix override any file or default values.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win over the file. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies SMARTQR_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvPrefix + "DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "ERROR_LEVEL"); v != "" {
		cfg.ErrorLevel = v
	}
	if v := os.Getenv(EnvPrefix + "FOREGROUND"); v != "" {
		cfg.Foreground = v
	}
	if v := os.Getenv(EnvPrefix + "BACKGROUND"); v != "" {
		cfg.Background = v
	}
	if v := os.Getenv(EnvPrefix + "BOX_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sBOX_SIZE: %w", EnvPrefix, err)
		}
		cfg.BoxSize = n
	}
	if v := os.Getenv(EnvPrefix + "BORDER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sBORDER: %w", EnvPrefix, err)
		}
		cfg.Border = n
	}
	if v := os.Getenv(EnvPrefix + "LOGO_SCALE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sLOGO_SCALE: %w", EnvPrefix, err)
		}
		cfg.LogoScale = f
	}
	if v := os.Getenv(EnvPrefix + "HISTORY"); v != "" {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			cfg.History = true
		case "false", "0", "no":
			cfg.History = false
		}
	}
	return nil
}

// EnsureDataDir creates the DataDir if it does not already exist.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir %s: %w", c.DataDir, err)
	}
	return nil
}

// HistoryPath is the SQLite database that records generated codes.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}
