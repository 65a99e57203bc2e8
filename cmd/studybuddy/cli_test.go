package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/config"
	"studybuddy/internal/gateway"
	"studybuddy/internal/heuristic"
	"studybuddy/internal/llm"
)

const noteBody = "Photosynthesis converts light energy into chemical energy inside plant cells. " +
	"Chlorophyll absorbs mostly blue and red wavelengths of light."

func init() {
	color.NoColor = true
}

func identityPerm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func run(t *testing.T, backend llm.Backend, stdin string, args ...string) (string, string, *cli, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cli{
		in:  strings.NewReader(stdin),
		out: &stdout,
		err: &stderr,
		buildGateway: func(c *cli) (*gateway.Gateway, error) {
			provider := config.ProviderOpenAI
			if c.provider != "" {
				provider = config.Provider(c.provider)
			}
			if provider == config.ProviderLocal {
				backend = nil
			}
			return gateway.New(provider, backend, heuristic.NewWithPerm(identityPerm), slog.New(slog.NewTextHandler(io.Discard, nil)))
		},
	}
	cmd := newRootCmd(c)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), c, err
}

func TestSummarizeFromStdin(t *testing.T) {
	backend := &llm.MockBackend{}
	backend.On("Invoke", mock.Anything, mock.Anything).Return("• light becomes sugar", nil).Once()

	out, _, _, err := run(t, backend, noteBody, "summarize")
	require.NoError(t, err)
	assert.Contains(t, out, "Summary (openai")
	assert.Contains(t, out, "• light becomes sugar")
}

func TestSummarizeFromFileWithProviderOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte(noteBody), 0o600))

	out, _, c, err := run(t, &llm.MockBackend{}, "", "--provider", "local", "summarize", path)
	require.NoError(t, err)
	assert.Equal(t, "local", c.provider)
	assert.Contains(t, out, "• Brief note about Photosynthesis")
}

func TestEmptyInputRejected(t *testing.T) {
	backend := &llm.MockBackend{}
	_, stderr, _, err := run(t, backend, "  \n ", "quiz", "-")
	assert.ErrorIs(t, err, errEmptyInput)
	assert.Contains(t, stderr, "note text is empty")
	backend.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestQuizPrintsItems(t *testing.T) {
	backend := &llm.MockBackend{}
	backend.On("Invoke", mock.Anything, mock.Anything).
		Return(`[{"question":"What absorbs light?","answer":"Chlorophyll"}]`, nil).Once()

	out, _, _, err := run(t, backend, noteBody, "quiz")
	require.NoError(t, err)
	assert.Contains(t, out, "1. What absorbs light?")
	assert.Contains(t, out, "Answer: Chlorophyll")
}

func TestSummarizeFailureShowsProviderMessage(t *testing.T) {
	backend := &llm.MockBackend{}
	backend.On("Invoke", mock.Anything, mock.Anything).
		Return("", &llm.Error{Provider: config.ProviderOpenAI, Kind: llm.ErrAuth, Status: 401}).Once()

	_, stderr, _, err := run(t, backend, noteBody, "summarize")
	require.Error(t, err)
	assert.Contains(t, stderr, "OpenAI API error.")
}

func TestPing(t *testing.T) {
	backend := &llm.MockBackend{}
	backend.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasSuffix(p, gateway.ProbeText)
	})).Return("• AI", nil).Once()

	out, _, _, err := run(t, backend, "", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ openai answered")

	_, _, _, err = run(t, backend, "", "ping", "extra")
	assert.Error(t, err)
}
