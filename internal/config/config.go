package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"claimsportal/internal/errors"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL = "http://127.0.0.1:8000"
	defaultStateDir   = ".claimsportal"
)

// Config represents the complete application configuration
type Config struct {
	API     APIConfig
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
}

// APIConfig holds claims backend connection settings
type APIConfig struct {
	BaseURL string
	// Timeout of zero means no client-side timeout.
	Timeout time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// StorageConfig holds where the persisted session lives
type StorageConfig struct {
	StateDir string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
	Mode  string
}

// fileConfig mirrors Config for the optional YAML overlay.
type fileConfig struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Server struct {
		Port    string `yaml:"port"`
		GinMode string `yaml:"gin_mode"`
	} `yaml:"server"`
	Storage struct {
		StateDir string `yaml:"state_dir"`
	} `yaml:"storage"`
	Log struct {
		Level string `yaml:"level"`
		Mode  string `yaml:"mode"`
	} `yaml:"log"`
}

// Load reads configuration from .env, an optional YAML file and environment variables, then validates it.
// Environment variables win over the file.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := defaults()

	stateDir := getEnvOrDefault("CLAIMS_STATE_DIR", config.Storage.StateDir)
	path := getEnvOrDefault("CLAIMS_CONFIG", filepath.Join(stateDir, "config.yaml"))
	if err := applyFile(config, path); err != nil {
		return nil, errors.Wrap(err, "failed to load configuration file")
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func defaults() *Config {
	stateDir := defaultStateDir
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, defaultStateDir)
	}
	return &Config{
		API:     APIConfig{BaseURL: DefaultAPIBaseURL},
		Server:  ServerConfig{Port: "8080", GinMode: "debug"},
		Storage: StorageConfig{StateDir: stateDir},
		Log:     LogConfig{Level: "INFO", Mode: "dev"},
	}
}

// applyFile overlays the YAML file at path. A missing file is not an error.
func applyFile(config *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return errors.Wrapf(errors.ConfigInvalid(err.Error()), "parsing %s", path)
	}

	setIfNotEmpty(&config.API.BaseURL, fc.API.BaseURL)
	if fc.API.Timeout != "" {
		d, err := time.ParseDuration(fc.API.Timeout)
		if err != nil {
			return errors.ConfigInvalid("api.timeout must be a duration like 30s")
		}
		config.API.Timeout = d
	}
	setIfNotEmpty(&config.Server.Port, fc.Server.Port)
	setIfNotEmpty(&config.Server.GinMode, fc.Server.GinMode)
	setIfNotEmpty(&config.Storage.StateDir, fc.Storage.StateDir)
	setIfNotEmpty(&config.Log.Level, fc.Log.Level)
	setIfNotEmpty(&config.Log.Mode, fc.Log.Mode)
	return nil
}

func applyEnv(config *Config) {
	config.API.BaseURL = getEnvOrDefault("CLAIMS_API_BASE_URL", config.API.BaseURL)
	config.API.Timeout = getEnvDurationOrDefault("CLAIMS_API_TIMEOUT", config.API.Timeout)
	config.Server.Port = getEnvOrDefault("PORT", config.Server.Port)
	config.Server.GinMode = getEnvOrDefault("GIN_MODE", config.Server.GinMode)
	config.Storage.StateDir = getEnvOrDefault("CLAIMS_STATE_DIR", config.Storage.StateDir)
	config.Log.Level = getEnvOrDefault("LOG_LEVEL", config.Log.Level)
	config.Log.Mode = getEnvOrDefault("LOG_MODE", config.Log.Mode)

	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")
}

func validateConfig(config *Config) error {
	u, err := url.Parse(config.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("CLAIMS_API_BASE_URL must be an absolute URL")
	}
	if config.API.Timeout < 0 {
		return errors.ConfigInvalid("CLAIMS_API_TIMEOUT cannot be negative")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	if config.Storage.StateDir == "" {
		return errors.ConfigInvalid("state directory is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
