// Package config handles configuration for reportsections.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the workspace configuration (reportsections.yaml).
type Config struct {
	// Rendering
	Title     string   `yaml:"title"`     // Report title override
	Output    string   `yaml:"output"`    // Default output path for render
	Collapsed []string `yaml:"collapsed"` // Section ids to start collapsed
	Expanded  []string `yaml:"expanded"`  // Section ids to start expanded

	// Lookup
	Legacy bool `yaml:"legacy"` // Resolve through layers and name lookups too

	// Logging
	LogFile string `yaml:"logFile"` // Explicit log file, wins over LogDir
	LogDir  string `yaml:"logDir"`  // Directory for reportsections.log
	Verbose bool   `yaml:"verbose"`
}

// ResolveLogFile returns the log file to write, or "" when logging is off.
// LogFile wins, then LogDir. Verbose runs without either log under the
// home directory.
func (c *Config) ResolveLogFile() string {
	switch {
	case c.LogFile != "":
		return c.LogFile
	case c.LogDir != "":
		return filepath.Join(c.LogDir, LogFileName)
	case c.Verbose:
		return DefaultLogFile()
	default:
		return ""
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for reportsections.yaml or reportsections.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, "reportsections.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	configPath = filepath.Join(dir, "reportsections.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	return &Config{}, nil
}
