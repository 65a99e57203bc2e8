// Package gateway routes summarize and quiz requests to the configured model
// backend, falling back to the local heuristic engine where that is allowed.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studybuddy/internal/config"
	"studybuddy/internal/heuristic"
	"studybuddy/internal/llm"
	"studybuddy/internal/quiz"
)

const (
	summaryPrompt = "Summarize the following study note into 3–5 concise bullet points focusing only on key concepts:\n\n"

	quizPrompt = "Based on the following study note, generate 3-5 quiz questions with answers. " +
		"Return ONLY a valid JSON array in this exact format, no other text:\n" +
		`[{"question": "...", "answer": "..."}, ...]` +
		"\n\nStudy note:\n"

	// ProbeText is the fixed note used by TestConnection.
	ProbeText = "This is a test note about artificial intelligence and machine learning concepts."
)

// Gateway is safe for concurrent use.
type Gateway struct {
	provider config.Provider
	backend  llm.Backend
	local    *heuristic.Engine
	log      *slog.Logger
}

// ConnectionResult reports the outcome of a probe summarization.
type ConnectionResult struct {
	Success  bool            `json:"success"`
	Provider config.Provider `json:"provider"`
	Result   string          `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// New builds a gateway. backend may be nil only for the local provider.
func New(provider config.Provider, backend llm.Backend, local *heuristic.Engine, log *slog.Logger) (*Gateway, error) {
	if !provider.Valid() {
		return nil, fmt.Errorf("unknown AI provider %q", provider)
	}
	if provider != config.ProviderLocal && backend == nil {
		return nil, fmt.Errorf("provider %q requires a backend", provider)
	}
	if local == nil {
		local = heuristic.New()
	}
	return &Gateway{provider: provider, backend: backend, local: local, log: log}, nil
}

// Provider returns the active provider.
func (g *Gateway) Provider() config.Provider {
	return g.provider
}

// Summarize returns the backend's summary verbatim. Backend failures are
// returned to the caller; there is no fallback for summaries.
func (g *Gateway) Summarize(ctx context.Context, text string) (string, error) {
	if g.provider == config.ProviderLocal {
		return g.local.Summarize(text), nil
	}

	start := time.Now()
	out, err := g.backend.Invoke(ctx, summaryPrompt+text)
	if err != nil {
		g.log.Error("summarize failed", "provider", g.provider, "error", err)
		return "", fmt.Errorf("summarize: %w", err)
	}
	g.log.Debug("summarize complete", "provider", g.provider, "duration_ms", time.Since(start).Milliseconds())
	return out, nil
}

// GenerateQuiz never fails. A backend or parse error degrades to the local
// engine, whose output also satisfies the quiz invariants.
func (g *Gateway) GenerateQuiz(ctx context.Context, text string) quiz.Quiz {
	if g.provider == config.ProviderLocal {
		return g.local.Quiz(text)
	}

	start := time.Now()
	raw, err := g.backend.Invoke(ctx, quizPrompt+text)
	if err != nil {
		g.log.Warn("quiz generation failed, using local engine", "provider", g.provider, "error", err)
		return g.local.Quiz(text)
	}
	q, err := quiz.Extract(raw)
	if err != nil {
		g.log.Warn("quiz response unparseable, using local engine", "provider", g.provider, "error", err)
		return g.local.Quiz(text)
	}
	g.log.Debug("quiz complete", "provider", g.provider, "items", len(q), "duration_ms", time.Since(start).Milliseconds())
	return q
}

// TestConnection summarizes ProbeText with the active provider.
func (g *Gateway) TestConnection(ctx context.Context) ConnectionResult {
	res := ConnectionResult{Provider: g.provider}
	out, err := g.Summarize(ctx, ProbeText)
	if err != nil {
		res.Error = llm.Describe(err)
		return res
	}
	res.Success = true
	res.Result = out
	return res
}
