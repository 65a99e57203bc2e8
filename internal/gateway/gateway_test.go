package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/config"
	"studybuddy/internal/heuristic"
	"studybuddy/internal/llm"
	"studybuddy/internal/quiz"
)

const note = "Photosynthesis converts light energy into chemical energy inside plant cells. " +
	"Chlorophyll absorbs mostly blue and red wavelengths of light."

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func identityPerm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func newGateway(t *testing.T, backend llm.Backend) *Gateway {
	t.Helper()
	g, err := New(config.ProviderOpenAI, backend, heuristic.NewWithPerm(identityPerm), discard())
	require.NoError(t, err)
	return g
}

func TestNew(t *testing.T) {
	_, err := New(config.ProviderOpenAI, nil, nil, discard())
	assert.Error(t, err)

	_, err = New(config.Provider("claude"), &llm.MockBackend{}, nil, discard())
	assert.Error(t, err)

	g, err := New(config.ProviderLocal, nil, nil, discard())
	require.NoError(t, err)
	assert.Equal(t, config.ProviderLocal, g.Provider())
}

func TestSummarizeBackend(t *testing.T) {
	backend := &llm.MockBackend{}
	backend.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, "Summarize the following study note") && strings.HasSuffix(p, note)
	})).Return("• one\n• two", nil)

	got, err := newGateway(t, backend).Summarize(context.Background(), note)
	require.NoError(t, err)
	assert.Equal(t, "• one\n• two", got)
	backend.AssertExpectations(t)
}

func TestSummarizeSurfacesErrors(t *testing.T) {
	backend := &llm.MockBackend{}
	upstream := &llm.Error{Provider: config.ProviderOpenAI, Kind: llm.ErrTimeout, Hint: "No response within 2m0s."}
	backend.On("Invoke", mock.Anything, mock.Anything).Return("", upstream)

	_, err := newGateway(t, backend).Summarize(context.Background(), note)
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrTimeout)
	assert.Equal(t, "OpenAI API error. No response within 2m0s.", llm.Describe(err))
}

func TestGenerateQuizBackend(t *testing.T) {
	backend := &llm.MockBackend{}
	backend.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Return ONLY a valid JSON array") && strings.HasSuffix(p, "Study note:\n"+note)
	})).Return("Sure!\n[{\"question\":\"What does chlorophyll absorb?\",\"answer\":\"Blue and red light\"}]", nil)

	got := newGateway(t, backend).GenerateQuiz(context.Background(), note)
	assert.Equal(t, quiz.Quiz{{Question: "What does chlorophyll absorb?", Answer: "Blue and red light"}}, got)
}

func TestGenerateQuizFallsBack(t *testing.T) {
	local := heuristic.NewWithPerm(identityPerm).Quiz(note)

	tests := []struct {
		name string
		out  string
		err  error
	}{
		{"backend error", "", &llm.Error{Provider: config.ProviderOpenAI, Kind: llm.ErrNetwork}},
		{"unparseable", "I cannot do that.", nil},
		{"empty array", "[]", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &llm.MockBackend{}
			backend.On("Invoke", mock.Anything, mock.Anything).Return(tt.out, tt.err)

			got := newGateway(t, backend).GenerateQuiz(context.Background(), note)
			assert.Equal(t, local, got)
			require.NotEmpty(t, got)
			assert.LessOrEqual(t, len(got), quiz.MaxItems)
		})
	}
}

func TestLocalProviderNeverCallsBackend(t *testing.T) {
	g, err := New(config.ProviderLocal, nil, heuristic.NewWithPerm(identityPerm), discard())
	require.NoError(t, err)

	summary, err := g.Summarize(context.Background(), note)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(summary, "• "))

	q := g.GenerateQuiz(context.Background(), note)
	assert.NotEmpty(t, q)
}

func TestTestConnection(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		backend := &llm.MockBackend{}
		backend.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.HasSuffix(p, ProbeText)
		})).Return("• AI and ML", nil)

		res := newGateway(t, backend).TestConnection(context.Background())
		assert.Equal(t, ConnectionResult{Success: true, Provider: config.ProviderOpenAI, Result: "• AI and ML"}, res)
	})

	t.Run("failure", func(t *testing.T) {
		backend := &llm.MockBackend{}
		backend.On("Invoke", mock.Anything, mock.Anything).Return("", errors.New("dial tcp: refused"))

		res := newGateway(t, backend).TestConnection(context.Background())
		assert.False(t, res.Success)
		assert.Equal(t, config.ProviderOpenAI, res.Provider)
		assert.Contains(t, res.Error, "dial tcp: refused")
	})

	t.Run("local", func(t *testing.T) {
		g, err := New(config.ProviderLocal, nil, nil, discard())
		require.NoError(t, err)
		res := g.TestConnection(context.Background())
		assert.True(t, res.Success)
		assert.NotEmpty(t, res.Result)
	})
}
