package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig represents the structure of ~/.roadside/config.yaml. Durations
// are strings such as "30s", "12h" or "7d".
type FileConfig struct {
	HTTP struct {
		Timeout   string `yaml:"timeout"`
		UserAgent string `yaml:"user_agent"`
		Cooldown  string `yaml:"cooldown"`
	} `yaml:"http"`
	Site struct {
		Endpoint   string `yaml:"endpoint"`
		Homepage   string `yaml:"homepage"`
		MarkerFunc string `yaml:"marker_func"`
	} `yaml:"site"`
	Cache struct {
		DSN    string `yaml:"dsn"`
		MaxAge string `yaml:"max_age"`
	} `yaml:"cache"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// ConfigFilePath returns the location of the user's config file.
func ConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".roadside", "config.yaml"), nil
}

// LoadConfigFile loads configuration from ~/.roadside/config.yaml. Returns
// nil if the file doesn't exist (not an error). Returns error if the file
// exists but cannot be parsed.
func LoadConfigFile() (*FileConfig, error) {
	configPath, err := ConfigFilePath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFileFrom(configPath)
}

// LoadConfigFileFrom loads configuration from configPath with the same
// semantics as LoadConfigFile.
func LoadConfigFileFrom(configPath string) (*FileConfig, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
