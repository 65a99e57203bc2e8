package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"studybuddy/internal/config"
)

const openAISystemPrompt = "You are a helpful study assistant."

// OpenAI calls any Chat Completions compatible endpoint through the official SDK.
type OpenAI struct {
	model   string
	apiKey  string
	timeout time.Duration
	client  *openai.Client
}

// NewOpenAI builds the adapter. The configured URL may be the API root or the
// full chat/completions endpoint. opts are appended after the defaults.
func NewOpenAI(cfg config.AI, opts ...option.RequestOption) *OpenAI {
	model := cfg.OpenAIModel
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	base := strings.TrimSuffix(strings.TrimRight(cfg.OpenAIURL, "/"), "/chat/completions")
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIKey),
		option.WithMaxRetries(0),
	}
	if base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base+"/"))
	}
	reqOpts = append(reqOpts, opts...)
	cli := openai.NewClient(reqOpts...)
	return &OpenAI{
		model:   model,
		apiKey:  cfg.OpenAIKey,
		timeout: cfg.Timeout,
		client:  &cli,
	}
}

func (c *OpenAI) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", missingKey(config.ProviderOpenAI, "LLM_API_KEY")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    buildMessages(openAISystemPrompt, prompt),
		Temperature: openai.Float(defaultTemperature),
		MaxTokens:   openai.Int(defaultMaxTokens),
	})
	if err != nil {
		return "", c.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", malformed(config.ProviderOpenAI, "no choices returned")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", malformed(config.ProviderOpenAI, "empty choices[0].message.content")
	}
	return content, nil
}

func (c *OpenAI) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return statusError(config.ProviderOpenAI, apiErr.StatusCode, apiErr.Message)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return transportError(config.ProviderOpenAI, c.timeout, err)
	}
	// The SDK reports undecodable bodies as plain errors.
	return &Error{Provider: config.ProviderOpenAI, Kind: ErrMalformedResponse, Err: err}
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
