package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"

	"studybuddy/internal/config"
)

// Ollama calls a locally running model server. It is unauthenticated; the two
// common operator mistakes (server not started, model not pulled) get their own
// diagnostics.
type Ollama struct {
	endpoint jsonEndpoint
	model    string
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// NewOllama builds the adapter. A nil client means http.DefaultClient.
func NewOllama(cfg config.AI, client *http.Client) *Ollama {
	model := cfg.OllamaModel
	if model == "" {
		model = "mistral"
	}
	return &Ollama{
		endpoint: newJSONEndpoint(config.ProviderOllama, cfg.OllamaURL, cfg.Timeout, client),
		model:    model,
	}
}

func (o *Ollama) Invoke(ctx context.Context, prompt string) (string, error) {
	status, body, err := o.endpoint.post(ctx, nil, ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		var aiErr *Error
		if errors.As(err, &aiErr) && errors.Is(err, syscall.ECONNREFUSED) {
			aiErr.Hint = `Ollama is not running. Please start Ollama with "ollama serve".`
			aiErr.Err = fmt.Errorf("%w: %w", ErrServiceNotRunning, aiErr.Err)
		}
		return "", err
	}
	if status == http.StatusNotFound {
		return "", &Error{
			Provider: config.ProviderOllama,
			Kind:     ErrUnexpectedStatus,
			Status:   status,
			Hint:     fmt.Sprintf("Ollama model %q not found. Please run \"ollama pull %s\".", o.model, o.model),
			Err:      fmt.Errorf("%w: %s", ErrModelNotPulled, errorDetail(body)),
		}
	}
	if err := o.endpoint.checkStatus(status, body); err != nil {
		return "", err
	}
	return o.endpoint.textAt(body, "response")
}
