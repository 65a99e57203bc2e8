// Package scheduler runs the periodic AI connection probe.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"studybuddy/internal/gateway"
)

const probeTimeout = 5 * time.Minute

// Prober is the part of the gateway the probe needs.
type Prober interface {
	TestConnection(ctx context.Context) gateway.ConnectionResult
}

type Scheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	spec   string
	prober Prober
	log    *slog.Logger
}

func New(ctx context.Context, spec string, prober Prober, log *slog.Logger) *Scheduler {
	return &Scheduler{
		ctx:    ctx,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		prober: prober,
		log:    log,
	}
}

// Start validates the schedule and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.probe); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running probe to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) probe() {
	ctx, cancel := context.WithTimeout(s.ctx, probeTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done", "error", ctx.Err())
		return
	default:
	}

	start := time.Now()
	res := s.prober.TestConnection(ctx)
	latency := time.Since(start).Milliseconds()

	if !res.Success {
		s.log.ErrorContext(ctx, "AI connection probe failed",
			"provider", res.Provider,
			"latency_ms", latency,
			"error", res.Error)
		return
	}
	s.log.InfoContext(ctx, "AI connection probe succeeded",
		"provider", res.Provider,
		"latency_ms", latency)
}
