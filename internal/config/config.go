// Package config manages the Security Toolbox application configuration.
// It handles loading, validating, and providing access to configuration settings
// from YAML files. It includes defaults for all settings and implements thread-safe
// access to configuration values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port            int      `yaml:"port"`
		Host            string   `yaml:"host"`
		AllowedOrigins  []string `yaml:"allowedOrigins"`
		ReadTimeout     int      `yaml:"readTimeout"`
		WriteTimeout    int      `yaml:"writeTimeout"`
		ShutdownTimeout int      `yaml:"shutdownTimeout"`
	} `yaml:"server"`

	Scanner struct {
		StepDelayMs     int     `yaml:"stepDelayMs"`
		OpenProbability float64 `yaml:"openProbability"`
	} `yaml:"scanner"`

	Ledger struct {
		DatabasePath string `yaml:"databasePath"`
		Capacity     int    `yaml:"capacity"`
		ExportDir    string `yaml:"exportDir"`
	} `yaml:"ledger"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	path string
	mu   sync.RWMutex
}

var (
	instance *Config
	once     sync.Once
)

// GetConfig returns the singleton configuration instance
func GetConfig() *Config {
	once.Do(func() {
		instance = &Config{}
		setDefaults(instance)
	})
	return instance
}

// LoadConfig loads configuration from a YAML file
func (c *Config) LoadConfig(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Save path for potential reloading
	c.path = path

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("configuration file does not exist: %s", path)
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	// Unmarshal YAML
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse configuration file: %w", err)
	}

	// Create directories if they don't exist
	dirs := []string{
		c.Ledger.ExportDir,
		filepath.Dir(c.Ledger.DatabasePath),
	}

	for _, dir := range dirs {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	// Validate configuration
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Info().Str("path", path).Msg("Configuration loaded successfully")
	return nil
}

// Reload reloads the configuration from the file
func (c *Config) Reload() error {
	if c.path == "" {
		return errors.New("configuration was not loaded from a file")
	}
	return c.LoadConfig(c.path)
}

// SaveConfig saves the current configuration to a file
func (c *Config) SaveConfig(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Scanner validation
	if c.Scanner.StepDelayMs < 0 {
		return fmt.Errorf("invalid scanner step delay: %d", c.Scanner.StepDelayMs)
	}

	if c.Scanner.OpenProbability < 0 || c.Scanner.OpenProbability > 1 {
		return fmt.Errorf("invalid open probability: %f", c.Scanner.OpenProbability)
	}

	// Ledger validation
	if c.Ledger.DatabasePath == "" {
		return errors.New("ledger database path is required")
	}

	if c.Ledger.Capacity <= 0 {
		return fmt.Errorf("invalid ledger capacity: %d", c.Ledger.Capacity)
	}

	return nil
}

// setDefaults initializes the configuration with default values
func setDefaults(c *Config) {
	// Server defaults
	c.Server.Port = 8080
	c.Server.Host = "127.0.0.1"
	c.Server.AllowedOrigins = []string{"*"}
	c.Server.ReadTimeout = 30
	c.Server.WriteTimeout = 30
	c.Server.ShutdownTimeout = 10

	// Scanner defaults
	c.Scanner.StepDelayMs = 200
	c.Scanner.OpenProbability = 0.30

	// Ledger defaults
	c.Ledger.DatabasePath = "./data/sectoolbox.db"
	c.Ledger.Capacity = 50
	c.Ledger.ExportDir = "./data/exports"

	// Logging defaults
	c.Logging.Level = "info"
	c.Logging.Format = "json"
}
