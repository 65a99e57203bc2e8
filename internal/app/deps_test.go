package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/config"
	"studybuddy/internal/logger"
)

func TestBuildBackend(t *testing.T) {
	log := logger.Discard()
	base := config.AI{Timeout: time.Second}

	tests := []struct {
		provider config.Provider
		wantNil  bool
		wantErr  bool
	}{
		{config.ProviderOpenAI, false, false},
		{config.ProviderHuggingFace, false, false},
		{config.ProviderGemini, false, false},
		{config.ProviderOllama, false, false},
		{config.ProviderLocal, true, false},
		{config.Provider("claude"), true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			cfg := base
			cfg.Provider = tt.provider
			b, err := buildBackend(cfg, log)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNil, b == nil)
		})
	}
}

func TestBuildGatewayWithoutKeyStillBuilds(t *testing.T) {
	gw, err := BuildGateway(config.AI{Provider: config.ProviderGemini, Timeout: time.Second}, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, config.ProviderGemini, gw.Provider())

	// The probe fails fast on the missing credential without touching the network.
	res := gw.TestConnection(context.Background())
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "GEMINI_API_KEY")
}

func TestBuildStore(t *testing.T) {
	log := logger.Discard()

	st, err := buildStore(context.Background(), config.Config{StoreProvider: "sqlite", DBURL: filepath.Join(t.TempDir(), "t.db")}, log)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = buildStore(context.Background(), config.Config{StoreProvider: "mongo"}, log)
	assert.Error(t, err)

	_, err = buildStore(context.Background(), config.Config{StoreProvider: "postgres"}, log)
	assert.ErrorContains(t, err, "DB_URL is required")
}

func TestBuildQueueDisabled(t *testing.T) {
	q, nc, err := buildQueue(config.Config{}, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, q)
	assert.Nil(t, nc)
}
