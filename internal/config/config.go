package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Provider names the text-generation backend the AI gateway talks to.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderHuggingFace Provider = "huggingface"
	ProviderGemini      Provider = "gemini"
	ProviderOllama      Provider = "ollama"
	ProviderLocal       Provider = "local"
)

// Providers lists every supported provider in display order.
var Providers = []Provider{ProviderOpenAI, ProviderHuggingFace, ProviderGemini, ProviderOllama, ProviderLocal}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// Config holds runtime configuration. It is read once at startup and never mutated afterwards.
type Config struct {
	// Server
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"sqlite"` // "sqlite", "postgres" or "redis"
	DBURL         string `env:"DB_URL" envDefault:"studybuddy.db"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Queue; empty disables async note jobs
	QueueURL string `env:"QUEUE_URL"`

	// Periodic connection probe, cron syntax; empty disables it
	HealthcheckSchedule string `env:"HEALTHCHECK_SCHEDULE"`

	AI AI
}

// AI is the provider configuration shared by the gateway and every backend adapter.
type AI struct {
	Provider Provider      `env:"AI_PROVIDER" envDefault:"openai"`
	Timeout  time.Duration `env:"AI_TIMEOUT" envDefault:"120s"`

	OpenAIURL   string `env:"LLM_API_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIKey   string `env:"LLM_API_KEY"`
	OpenAIModel string `env:"LLM_MODEL" envDefault:"gpt-3.5-turbo"`

	HuggingFaceURL string `env:"HUGGINGFACE_API_URL" envDefault:"https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.2"`
	HuggingFaceKey string `env:"HUGGINGFACE_API_KEY"`

	GeminiURL string `env:"GEMINI_API_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"`
	GeminiKey string `env:"GEMINI_API_KEY"`

	OllamaURL   string `env:"OLLAMA_API_URL" envDefault:"http://localhost:11434/api/generate"`
	OllamaModel string `env:"OLLAMA_MODEL" envDefault:"mistral"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// Validate rejects configurations the gateway cannot run with.
func (c Config) Validate() error {
	if !c.AI.Provider.Valid() {
		return fmt.Errorf("invalid AI_PROVIDER: %q (valid options: %v)", c.AI.Provider, Providers)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive, got %s", c.AI.Timeout)
	}
	return nil
}
