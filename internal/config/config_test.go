package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	originalEnv := os.Environ()
	t.Cleanup(func() {
		os.Clearenv()
		for _, kv := range originalEnv {
			if k, v, ok := strings.Cut(kv, "="); ok {
				os.Setenv(k, v)
			}
		}
	})
	os.Clearenv()
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "json"},
		{"StoreProvider", cfg.StoreProvider, "sqlite"},
		{"DBURL", cfg.DBURL, "studybuddy.db"},
		{"QueueURL", cfg.QueueURL, ""},
		{"Provider", cfg.AI.Provider, ProviderOpenAI},
		{"Timeout", cfg.AI.Timeout, 120 * time.Second},
		{"OpenAIModel", cfg.AI.OpenAIModel, "gpt-3.5-turbo"},
		{"OllamaURL", cfg.AI.OllamaURL, "http://localhost:11434/api/generate"},
		{"OllamaModel", cfg.AI.OllamaModel, "mistral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("OLLAMA_MODEL", "llama3")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
	if cfg.AI.Provider != ProviderOllama {
		t.Errorf("expected provider ollama, got %s", cfg.AI.Provider)
	}
	if cfg.AI.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", cfg.AI.Timeout)
	}
	if cfg.AI.OllamaModel != "llama3" {
		t.Errorf("expected model llama3, got %s", cfg.AI.OllamaModel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		timeout  time.Duration
		wantErr  bool
	}{
		{"openai", ProviderOpenAI, time.Second, false},
		{"local", ProviderLocal, time.Second, false},
		{"unknown provider", Provider("anthropic"), time.Second, true},
		{"empty provider", Provider(""), time.Second, true},
		{"zero timeout", ProviderGemini, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{AI: AI{Provider: tt.provider, Timeout: tt.timeout}}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
