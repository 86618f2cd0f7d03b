package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EnvDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MODELS_DIR", "")
	t.Setenv("PORT", "")
	t.Setenv("METRICS_PORT", "")
	t.Setenv("TEMPERATURE", "")
	t.Setenv("INFERENCE_TIMEOUT", "")
	t.Setenv("MAX_BODY_BYTES", "")
	t.Setenv("LOG_LEVEL", "")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.ModelsDir != "models" {
		t.Errorf("Expected default models dir, got %q", s.ModelsDir)
	}
	if s.Port != 5000 || s.MetricsPort != 9090 {
		t.Errorf("Unexpected default ports: %d, %d", s.Port, s.MetricsPort)
	}
	if s.Temperature != 1.0 {
		t.Errorf("Expected default temperature 1.0, got %f", s.Temperature)
	}
	if s.InferenceTimeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", s.InferenceTimeout)
	}
	if s.MaxBodyBytes != 100*1024*1024 {
		t.Errorf("Expected 100MB body cap, got %d", s.MaxBodyBytes)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MODELS_DIR", "/opt/eeg/models")
	t.Setenv("PORT", "8080")
	t.Setenv("METRICS_PORT", "9100")
	t.Setenv("TEMPERATURE", "1.5")
	t.Setenv("INFERENCE_TIMEOUT", "45s")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.ModelsDir != "/opt/eeg/models" {
		t.Errorf("MODELS_DIR override ignored: %q", s.ModelsDir)
	}
	if s.Port != 8080 || s.MetricsPort != 9100 {
		t.Errorf("Port overrides ignored: %d, %d", s.Port, s.MetricsPort)
	}
	if s.Temperature != 1.5 {
		t.Errorf("TEMPERATURE override ignored: %f", s.Temperature)
	}
	if s.InferenceTimeout != 45*time.Second {
		t.Errorf("INFERENCE_TIMEOUT override ignored: %v", s.InferenceTimeout)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	content := `
models:
  dir: /srv/models
  temperature: 2.0
  inferenceTimeout: 1m
server:
  port: 7000
  metricsPort: 9200
  logLevel: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MODELS_DIR", "")
	t.Setenv("PORT", "")
	t.Setenv("METRICS_PORT", "")
	t.Setenv("TEMPERATURE", "")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.ModelsDir != "/srv/models" || s.Port != 7000 || s.MetricsPort != 9200 {
		t.Errorf("YAML values not applied: %+v", s)
	}
	if s.Temperature != 2.0 || s.InferenceTimeout != time.Minute {
		t.Errorf("YAML model settings not applied: %+v", s)
	}
	if s.LogLevel != "debug" {
		t.Errorf("Expected debug log level, got %q", s.LogLevel)
	}
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	content := `
server:
  port: 7000
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "8123")
	t.Setenv("METRICS_PORT", "")
	t.Setenv("MODELS_DIR", "")
	t.Setenv("TEMPERATURE", "")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Port != 8123 {
		t.Errorf("Environment should override YAML, got port %d", s.Port)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidateSettings(t *testing.T) {
	valid := Settings{
		ModelsDir:        "models",
		Port:             5000,
		MetricsPort:      9090,
		Temperature:      1.0,
		InferenceTimeout: 30 * time.Second,
		MaxBodyBytes:     1 << 20,
	}

	testCases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty models dir", func(s *Settings) { s.ModelsDir = "" }},
		{"port too high", func(s *Settings) { s.Port = 70000 }},
		{"metrics port privileged", func(s *Settings) { s.MetricsPort = 80 }},
		{"port collision", func(s *Settings) { s.MetricsPort = s.Port }},
		{"zero temperature", func(s *Settings) { s.Temperature = 0 }},
		{"absurd temperature", func(s *Settings) { s.Temperature = 50 }},
		{"timeout too short", func(s *Settings) { s.InferenceTimeout = time.Millisecond }},
		{"tiny body cap", func(s *Settings) { s.MaxBodyBytes = 10 }},
	}

	if err := validateSettings(&valid); err != nil {
		t.Fatalf("Valid settings rejected: %v", err)
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid
			tc.mutate(&s)
			if err := validateSettings(&s); err == nil {
				t.Error("Expected validation to fail")
			}
		})
	}
}
