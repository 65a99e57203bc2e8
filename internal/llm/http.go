package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"studybuddy/internal/config"
)

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 500
	maxResponseBytes   = 4 << 20
)

// jsonEndpoint posts JSON to one URL under a hard per-call timeout.
type jsonEndpoint struct {
	provider config.Provider
	url      string
	timeout  time.Duration
	client   *http.Client
}

func newJSONEndpoint(provider config.Provider, url string, timeout time.Duration, client *http.Client) jsonEndpoint {
	if client == nil {
		client = http.DefaultClient
	}
	return jsonEndpoint{provider: provider, url: url, timeout: timeout, client: client}
}

// post returns the status and body of the response. Transport failures come back
// as *Error; status handling is left to the caller.
func (e jsonEndpoint) post(ctx context.Context, headers map[string]string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: marshal request: %w", e.provider, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, &Error{Provider: e.provider, Kind: ErrNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, nil, transportError(e.provider, e.timeout, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, transportError(e.provider, e.timeout, err)
	}
	return resp.StatusCode, respBody, nil
}

// checkStatus fails any non-2xx response, quoting the provider's error message when it sent one.
func (e jsonEndpoint) checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	return statusError(e.provider, status, errorDetail(body))
}

// errorDetail digs the message out of the common error-body shapes:
// {"error":{"message":...}}, {"error":"..."} or a plain-text body.
func errorDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return truncate(strings.TrimSpace(string(body)), 200)
	}
	for _, path := range []string{"error.message", "error", "0.error", "message"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

// textAt extracts a non-blank string at path, failing with ErrMalformedResponse otherwise.
func (e jsonEndpoint) textAt(body []byte, path string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", malformed(e.provider, "response is not valid JSON")
	}
	r := gjson.GetBytes(body, path)
	if !r.Exists() {
		return "", malformed(e.provider, "missing %s", path)
	}
	if r.Type != gjson.String || strings.TrimSpace(r.String()) == "" {
		return "", malformed(e.provider, "empty %s", path)
	}
	return r.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
