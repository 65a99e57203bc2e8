package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"studybuddy/internal/config"
)

// Gemini calls the generateContent REST endpoint, authenticating with the
// x-goog-api-key header.
type Gemini struct {
	endpoint jsonEndpoint
	apiKey   string
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// NewGemini builds the adapter. A nil client means http.DefaultClient.
func NewGemini(cfg config.AI, client *http.Client) *Gemini {
	return &Gemini{
		endpoint: newJSONEndpoint(config.ProviderGemini, cfg.GeminiURL, cfg.Timeout, client),
		apiKey:   cfg.GeminiKey,
	}
}

func (g *Gemini) Invoke(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", missingKey(config.ProviderGemini, "GEMINI_API_KEY")
	}
	status, body, err := g.endpoint.post(ctx, map[string]string{
		"x-goog-api-key": g.apiKey,
	}, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     defaultTemperature,
			MaxOutputTokens: defaultMaxTokens,
		},
	})
	if err != nil {
		return "", err
	}
	if err := g.endpoint.checkStatus(status, body); err != nil {
		return "", err
	}
	return g.extract(body)
}

// extract walks candidates[0].content.parts[0].text one level at a time. The
// candidate list is empty when the prompt is blocked, and a candidate carries no
// content when the answer is stopped by safety filtering.
func (g *Gemini) extract(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", malformed(config.ProviderGemini, "response is not valid JSON")
	}
	root := gjson.ParseBytes(body)

	candidates := root.Get("candidates")
	if !candidates.IsArray() || len(candidates.Array()) == 0 {
		if reason := root.Get("promptFeedback.blockReason").String(); reason != "" {
			return "", malformed(config.ProviderGemini, "missing candidates (prompt blocked: %s)", reason)
		}
		return "", malformed(config.ProviderGemini, "missing candidates")
	}

	candidate := candidates.Array()[0]
	content := candidate.Get("content")
	if !content.IsObject() {
		if reason := candidate.Get("finishReason").String(); reason != "" {
			return "", malformed(config.ProviderGemini, "candidate has no content (finish reason: %s)", reason)
		}
		return "", malformed(config.ProviderGemini, "candidate has no content")
	}

	parts := content.Get("parts")
	if !parts.IsArray() || len(parts.Array()) == 0 {
		return "", malformed(config.ProviderGemini, "missing content/parts")
	}

	text := parts.Array()[0].Get("text")
	if text.Type != gjson.String || strings.TrimSpace(text.String()) == "" {
		return "", malformed(config.ProviderGemini, "empty parts[0].text")
	}
	return text.String(), nil
}
