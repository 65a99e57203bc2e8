package llm

import (
	"context"
	"net/http"

	"studybuddy/internal/config"
)

// HuggingFace calls the hosted inference API. The response is a list holding one
// object with a generated_text field.
type HuggingFace struct {
	endpoint jsonEndpoint
	apiKey   string
}

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

// NewHuggingFace builds the adapter. A nil client means http.DefaultClient.
func NewHuggingFace(cfg config.AI, client *http.Client) *HuggingFace {
	return &HuggingFace{
		endpoint: newJSONEndpoint(config.ProviderHuggingFace, cfg.HuggingFaceURL, cfg.Timeout, client),
		apiKey:   cfg.HuggingFaceKey,
	}
}

func (h *HuggingFace) Invoke(ctx context.Context, prompt string) (string, error) {
	if h.apiKey == "" {
		return "", missingKey(config.ProviderHuggingFace, "HUGGINGFACE_API_KEY")
	}
	status, body, err := h.endpoint.post(ctx, map[string]string{
		"Authorization": "Bearer " + h.apiKey,
	}, huggingFaceRequest{
		Inputs: prompt,
		Parameters: huggingFaceParameters{
			MaxNewTokens:   defaultMaxTokens,
			Temperature:    defaultTemperature,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", err
	}
	if err := h.endpoint.checkStatus(status, body); err != nil {
		return "", err
	}
	return h.endpoint.textAt(body, "0.generated_text")
}
