package scheduler

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"studybuddy/internal/config"
	"studybuddy/internal/gateway"
)

type stubProber struct {
	res   gateway.ConnectionResult
	calls int
}

func (p *stubProber) TestConnection(context.Context) gateway.ConnectionResult {
	p.calls++
	return p.res
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(context.Background(), "not a cron spec", &stubProber{}, slog.Default())
	assert.Error(t, s.Start())
}

func TestProbeLogsOutcome(t *testing.T) {
	tests := []struct {
		name string
		res  gateway.ConnectionResult
		want string
	}{
		{"success", gateway.ConnectionResult{Success: true, Provider: config.ProviderLocal, Result: "• ok"}, "AI connection probe succeeded"},
		{"failure", gateway.ConnectionResult{Provider: config.ProviderOllama, Error: "Ollama error."}, "AI connection probe failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := &stubProber{res: tt.res}
			s := New(context.Background(), "@every 1h", p, slog.New(slog.NewTextHandler(&buf, nil)))

			s.probe()
			assert.Equal(t, 1, p.calls)
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "provider="+string(tt.res.Provider))
		})
	}
}

func TestProbeSkipsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &stubProber{}
	New(ctx, "@every 1h", p, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).probe()
	assert.Zero(t, p.calls)
}

func TestStartStop(t *testing.T) {
	s := New(context.Background(), "@every 1h", &stubProber{}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	assert.NoError(t, s.Start())
	s.Stop()
}
