package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"studybuddy/internal/config"
)

// Backend is one text-generation service. Invoke sends a single prompt and
// returns the raw generated text. Implementations never retry.
type Backend interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Failure kinds. Every adapter error matches exactly one of these with errors.Is.
var (
	ErrTimeout           = errors.New("timeout")
	ErrAuth              = errors.New("authentication failed")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNetwork           = errors.New("network error")
	ErrUnexpectedStatus  = errors.New("unexpected status")
)

// Diagnostics for the local model server; wrapped inside an *Error.
var (
	ErrServiceNotRunning = errors.New("service not running")
	ErrModelNotPulled    = errors.New("model not pulled")
	errMissingAPIKey     = errors.New("api key not configured")
)

// Error is the failure returned by every adapter.
type Error struct {
	Provider config.Provider
	Kind     error
	Status   int
	Hint     string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Provider, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Hint != "" {
		b.WriteString(": ")
		b.WriteString(e.Hint)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

var providerNotes = map[config.Provider]struct{ label, hint string }{
	config.ProviderOpenAI:      {"OpenAI API error.", "You may want to try a different AI provider."},
	config.ProviderHuggingFace: {"Hugging Face API error.", "Check your API key."},
	config.ProviderGemini:      {"Gemini API error.", "Check your API key."},
	config.ProviderOllama:      {"Ollama error.", "Make sure Ollama is running locally."},
}

// Message is the actionable, provider-categorized text shown to users.
func (e *Error) Message() string {
	note, ok := providerNotes[e.Provider]
	if !ok {
		return "AI Service Error: " + e.Error()
	}
	if e.Hint != "" {
		return note.label + " " + e.Hint
	}
	return note.label + " " + note.hint
}

// Describe returns the user-facing message for any error a backend or the gateway produced.
func Describe(err error) string {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Message()
	}
	return "AI Service Error: " + err.Error()
}

func missingKey(provider config.Provider, envVar string) *Error {
	return &Error{
		Provider: provider,
		Kind:     ErrAuth,
		Hint:     fmt.Sprintf("API key not configured; set %s.", envVar),
		Err:      errMissingAPIKey,
	}
}

func malformed(provider config.Provider, format string, args ...any) *Error {
	return &Error{Provider: provider, Kind: ErrMalformedResponse, Err: fmt.Errorf(format, args...)}
}

// transportError classifies a failed round trip as a timeout or a network error.
func transportError(provider config.Provider, timeout time.Duration, err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{
			Provider: provider,
			Kind:     ErrTimeout,
			Hint:     fmt.Sprintf("No response within %s.", timeout),
			Err:      err,
		}
	}
	return &Error{Provider: provider, Kind: ErrNetwork, Err: err}
}

// statusError maps a non-2xx response onto the failure taxonomy.
func statusError(provider config.Provider, status int, detail string) *Error {
	e := &Error{Provider: provider, Kind: ErrUnexpectedStatus, Status: status}
	if status == 401 || status == 403 {
		e.Kind = ErrAuth
	}
	if detail != "" {
		e.Err = errors.New(detail)
	}
	return e
}
