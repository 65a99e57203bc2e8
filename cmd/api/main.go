package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"studybuddy/internal/app"
	"studybuddy/internal/httputil"
	"studybuddy/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	g, ctx := errgroup.WithContext(ctx)

	if spec := deps.Config.HealthcheckSchedule; spec != "" {
		sched := scheduler.New(ctx, spec, deps.Gateway, deps.Log)
		if err := sched.Start(); err != nil {
			deps.Log.Error("invalid HEALTHCHECK_SCHEDULE", "spec", spec, "err", err)
			os.Exit(1)
		}
		deps.Log.Info("connection probe scheduled", "spec", spec)
		g.Go(func() error {
			<-ctx.Done()
			sched.Stop()
			return nil
		})
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		return httputil.Serve(ctx, srv, deps.Log)
	})

	deps.Log.Info("StudyBuddy API starting", "provider", deps.Gateway.Provider(), "store", deps.Config.StoreProvider)
	if err := g.Wait(); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)

	r.Get("/health", healthHandler())
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	r.Get("/test-api", testAPIHandler(deps))

	r.Post("/notes", createNoteHandler(deps))
	r.Get("/notes/{id}", getNoteHandler(deps))
	r.Post("/notes/{id}/summarize", summarizeNoteHandler(deps))
	r.Post("/notes/{id}/quiz", quizNoteHandler(deps))

	r.Post("/summarize", summarizeTextHandler(deps))
	r.Post("/quiz", quizTextHandler(deps))

	return r
}
