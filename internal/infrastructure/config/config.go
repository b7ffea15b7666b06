// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for threadline configuration.
	DefaultConfigDir = ".threadline"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultSocketFile is the default host socket file name.
	DefaultSocketFile = "threadline.sock"
	// DefaultDatabaseFile is the default host database file name.
	DefaultDatabaseFile = "threadline.db"
	// DefaultLogFile is the default log file name.
	DefaultLogFile = "threadline.log"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Socket   SocketConfig   `yaml:"socket,omitempty"`
	Timeline TimelineConfig `yaml:"timeline,omitempty"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
}

// SocketConfig holds configuration for the host process socket.
type SocketConfig struct {
	Path string `yaml:"path,omitempty"`
}

// TimelineConfig holds the timeline scope editors operate in.
type TimelineConfig struct {
	ID string `yaml:"id,omitempty"`
}

// SQLiteConfig holds configuration for the host daemon's SQLite store.
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Path  string `yaml:"path,omitempty"`
	Level string `yaml:"level,omitempty"`
}

// Default returns a Config with default values rooted at basePath.
func Default(basePath string) *Config {
	dir := filepath.Join(basePath, DefaultConfigDir)
	return &Config{
		Socket:   SocketConfig{Path: filepath.Join(dir, DefaultSocketFile)},
		Timeline: TimelineConfig{ID: "default"},
		SQLite:   SQLiteConfig{Path: filepath.Join(dir, DefaultDatabaseFile)},
		Log:      LogConfig{Path: filepath.Join(dir, DefaultLogFile), Level: "info"},
	}
}

// Load loads configuration from the .threadline directory in the given path.
// A missing config file yields the defaults.
func Load(basePath string) (*Config, error) {
	cfg := Default(basePath)

	data, err := os.ReadFile(ConfigFilePath(basePath))
	if os.IsNotExist(err) {
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("THREADLINE_SOCKET"); p != "" {
		c.Socket.Path = p
	}
	if id := os.Getenv("THREADLINE_TIMELINE"); id != "" {
		c.Timeline.ID = id
	}
}

// ConfigDir returns the path to the .threadline config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// EnsureConfigDir creates the config directory if it does not exist.
func EnsureConfigDir(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return nil
}
