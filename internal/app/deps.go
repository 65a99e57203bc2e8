package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"studybuddy/internal/config"
	"studybuddy/internal/gateway"
	"studybuddy/internal/heuristic"
	"studybuddy/internal/llm"
	"studybuddy/internal/logger"
	"studybuddy/internal/queue"
	"studybuddy/internal/store"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config  config.Config
	Log     *slog.Logger
	Store   store.Store
	Queue   queue.Queue // nil when QUEUE_URL is unset
	Gateway *gateway.Gateway

	closers []func() error
}

// Close releases the store and queue connections.
func (d Deps) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			d.Log.Warn("failed to close dependency", "err", err)
		}
	}
}

// LoadConfig loads .env when present, then the environment, and builds the logger.
func LoadConfig() (config.Config, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat), nil
}

// Build loads env, config, and shared components.
func Build(ctx context.Context) (Deps, error) {
	cfg, log, err := LoadConfig()
	if err != nil {
		return Deps{}, err
	}

	gw, err := BuildGateway(cfg.AI, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize AI gateway: %w", err)
	}
	st, err := buildStore(ctx, cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	deps := Deps{Config: cfg, Log: log, Store: st, Gateway: gw, closers: []func() error{st.Close}}

	q, nc, err := buildQueue(cfg, log)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	if nc != nil {
		deps.Queue = q
		deps.closers = append(deps.closers, func() error { return nc.Drain() })
	}
	return deps, nil
}

// BuildGateway wires the configured backend into a gateway.
func BuildGateway(cfg config.AI, log *slog.Logger) (*gateway.Gateway, error) {
	backend, err := buildBackend(cfg, log)
	if err != nil {
		return nil, err
	}
	return gateway.New(cfg.Provider, backend, heuristic.New(), log)
}

func buildBackend(cfg config.AI, log *slog.Logger) (llm.Backend, error) {
	// Adapters own their timeouts; the client carries none of its own.
	client := &http.Client{}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		warnMissingKey(log, cfg.OpenAIKey, "LLM_API_KEY", cfg.Provider)
		log.Info("using OpenAI backend", "model", cfg.OpenAIModel, "url", cfg.OpenAIURL)
		return llm.NewOpenAI(cfg), nil
	case config.ProviderHuggingFace:
		warnMissingKey(log, cfg.HuggingFaceKey, "HUGGINGFACE_API_KEY", cfg.Provider)
		log.Info("using Hugging Face backend", "url", cfg.HuggingFaceURL)
		return llm.NewHuggingFace(cfg, client), nil
	case config.ProviderGemini:
		warnMissingKey(log, cfg.GeminiKey, "GEMINI_API_KEY", cfg.Provider)
		log.Info("using Gemini backend", "url", cfg.GeminiURL)
		return llm.NewGemini(cfg, client), nil
	case config.ProviderOllama:
		log.Info("using Ollama backend", "model", cfg.OllamaModel, "url", cfg.OllamaURL)
		return llm.NewOllama(cfg, client), nil
	case config.ProviderLocal:
		log.Info("using local heuristic engine")
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid AI_PROVIDER: %s (valid options: %v)", cfg.Provider, config.Providers)
	}
}

func warnMissingKey(log *slog.Logger, key, envVar string, provider config.Provider) {
	if key == "" {
		log.Warn(envVar+" is not set; AI calls will fail until it is configured", "provider", provider)
	}
}

func buildStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "sqlite":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=sqlite")
		}
		db, err := store.NewSQLite(ctx, cfg.DBURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		log.Info("using SQLite store", "path", cfg.DBURL)
		return db, nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(ctx, cfg.DBURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when STORE_PROVIDER=redis")
		}
		db, err := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		log.Info("using Redis store", "addr", cfg.RedisAddr)
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: sqlite, postgres, redis)", cfg.StoreProvider)
	}
}

// buildQueue returns a nil connection when no queue is configured.
func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, *nats.Conn, error) {
	if cfg.QueueURL == "" {
		log.Info("QUEUE_URL not set; async note jobs disabled")
		return nil, nil, nil
	}
	nc, err := nats.Connect(cfg.QueueURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("using NATS queue", "url", cfg.QueueURL)
	return queue.NewNATS(log, nc), nc, nil
}
