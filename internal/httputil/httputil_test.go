package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestEnvelopes(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, http.StatusOK, map[string]string{"message": "hi"})
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["error"])
	assert.NotContains(t, body, "latency_ms")

	rec = httptest.NewRecorder()
	OKTimed(rec, http.StatusOK, "x", 1500*time.Millisecond)
	assert.Equal(t, float64(1500), decode(t, rec)["latency_ms"])

	rec = httptest.NewRecorder()
	Fail(discard(), rec, "Note body is empty", errors.New("empty"), http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Note body is empty", body["error"])

	rec = httptest.NewRecorder()
	Fail(discard(), rec, "boom", nil, 0)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type textRequest struct {
	Text string `json:"text" validate:"required,notblank"`
}

func TestValidatorDecodeJSON(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"ok", `{"text":"Cells divide."}`, ""},
		{"missing", `{}`, "text: is required"},
		{"whitespace", `{"text":"   \n"}`, "text: is required"},
		{"not json", `text=hi`, "invalid JSON body"},
		{"too large", `{"text":"` + strings.Repeat("a", 200) + `"}`, "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst textRequest
			err := v.DecodeJSON(rec, req, 100, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Cells divide.", dst.Text)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantErr, ve.Error())
		})
	}
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(discard())(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
