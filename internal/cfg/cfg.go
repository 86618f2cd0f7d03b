// Package cfg loads service configuration from a YAML file with environment
// variable overrides, falling back to environment-only configuration when no
// file is given.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	ModelsDir        string
	Port             int
	MetricsPort      int
	Temperature      float64
	InferenceTimeout time.Duration
	MaxBodyBytes     int64
	LogLevel         string
}

// ConfigFile is the YAML layout.
type ConfigFile struct {
	Models struct {
		Dir         string  `yaml:"dir"`
		Temperature float64 `yaml:"temperature"`
		Timeout     string  `yaml:"inferenceTimeout"`
	} `yaml:"models"`

	Server struct {
		Port         int    `yaml:"port"`
		MetricsPort  int    `yaml:"metricsPort"`
		MaxBodyBytes int64  `yaml:"maxBodyBytes"`
		LogLevel     string `yaml:"logLevel"`
	} `yaml:"server"`
}

// Load reads CONFIG_FILE when set, otherwise environment variables only.
func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	timeout, err := time.ParseDuration(config.Models.Timeout)
	if err != nil {
		timeout = 30 * time.Second
	}

	settings := Settings{
		ModelsDir:        getEnvOrDefault("MODELS_DIR", config.Models.Dir),
		Port:             getIntFromEnvOrConfig("PORT", config.Server.Port),
		MetricsPort:      getIntFromEnvOrConfig("METRICS_PORT", config.Server.MetricsPort),
		Temperature:      getFloatFromEnvOrConfig("TEMPERATURE", config.Models.Temperature),
		InferenceTimeout: timeout,
		MaxBodyBytes:     config.Server.MaxBodyBytes,
		LogLevel:         getEnvOrDefault("LOG_LEVEL", config.Server.LogLevel),
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelsDir:        getEnvOrDefault("MODELS_DIR", "models"),
		Port:             getIntOrDefault("PORT", 5000),
		MetricsPort:      getIntOrDefault("METRICS_PORT", 9090),
		Temperature:      getFloatOrDefault("TEMPERATURE", 1.0),
		InferenceTimeout: getDurationOrDefault("INFERENCE_TIMEOUT", 30*time.Second),
		MaxBodyBytes:     int64(getIntOrDefault("MAX_BODY_BYTES", 0)),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
	}
	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.ModelsDir == "" {
		s.ModelsDir = "models"
	}
	if s.Port == 0 {
		s.Port = 5000
	}
	if s.MetricsPort == 0 {
		s.MetricsPort = 9090
	}
	if s.Temperature == 0 {
		s.Temperature = 1.0
	}
	if s.InferenceTimeout == 0 {
		s.InferenceTimeout = 30 * time.Second
	}
	if s.MaxBodyBytes == 0 {
		// Matches the upstream API's 100MB upload cap.
		s.MaxBodyBytes = 100 * 1024 * 1024
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	return configValue
}

func getFloatFromEnvOrConfig(key string, configValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	return configValue
}

func validateSettings(s *Settings) error {
	if s.ModelsDir == "" {
		return fmt.Errorf("models directory cannot be empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.MetricsPort < 1024 || s.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", s.MetricsPort)
	}
	if s.Port == s.MetricsPort {
		return fmt.Errorf("port and metrics port must differ, both are %d", s.Port)
	}
	if s.Temperature <= 0 || s.Temperature > 10 {
		return fmt.Errorf("temperature must be between 0 and 10, got %f", s.Temperature)
	}
	if s.InferenceTimeout < time.Second || s.InferenceTimeout > 5*time.Minute {
		return fmt.Errorf("inference timeout must be between 1s and 5m, got %v", s.InferenceTimeout)
	}
	if s.MaxBodyBytes < 1024 {
		return fmt.Errorf("max body size must be at least 1KB, got %d", s.MaxBodyBytes)
	}
	return nil
}
