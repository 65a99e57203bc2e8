package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"studybuddy/internal/app"
	"studybuddy/internal/httputil"
	"studybuddy/internal/queue"
	"studybuddy/internal/store"
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

	if deps.Queue == nil {
		deps.Log.Error("QUEUE_URL is required for the worker")
		os.Exit(1)
	}
	deps.Log.Info("note worker starting", "provider", deps.Gateway.Provider())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeSummarize, func(ctx context.Context, task queue.Task) error {
			return handleSummarize(ctx, deps, task)
		})
	})
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeQuiz, func(ctx context.Context, task queue.Task) error {
			return handleQuiz(ctx, deps, task)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(ctx, fmt.Sprintf(":%d", deps.Config.Port), deps.Log)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("worker stopped", "err", err)
	}
}

// loadNote fetches the task's note. Missing notes and blank bodies are permanent
// failures: redelivery cannot fix them.
func loadNote(ctx context.Context, deps app.Deps, task queue.Task) (store.Note, error) {
	payload, err := queue.DecodeNotePayload(task)
	if err != nil {
		return store.Note{}, err
	}
	note, err := deps.Store.GetNote(ctx, payload.NoteID)
	if errors.Is(err, store.ErrNoteNotFound) {
		return store.Note{}, queue.Permanent(err)
	}
	if err != nil {
		return store.Note{}, fmt.Errorf("load note %s: %w", payload.NoteID, err)
	}
	if strings.TrimSpace(note.Body) == "" {
		return store.Note{}, queue.Permanent(fmt.Errorf("note %s: body is empty", note.ID))
	}
	return note, nil
}

func handleSummarize(ctx context.Context, deps app.Deps, task queue.Task) error {
	note, err := loadNote(ctx, deps, task)
	if err != nil {
		return err
	}
	start := time.Now()
	summary, err := deps.Gateway.Summarize(ctx, note.Body)
	if err != nil {
		return err
	}
	if err := deps.Store.SaveSummary(ctx, note.ID, summary); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	deps.Log.Info("note summarized", "note_id", note.ID, "task_id", task.ID, "latency_ms", time.Since(start).Milliseconds())
	return nil
}

func handleQuiz(ctx context.Context, deps app.Deps, task queue.Task) error {
	note, err := loadNote(ctx, deps, task)
	if err != nil {
		return err
	}
	start := time.Now()
	q := deps.Gateway.GenerateQuiz(ctx, note.Body)
	if err := deps.Store.SaveQuiz(ctx, note.ID, q); err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	deps.Log.Info("quiz generated", "note_id", note.ID, "task_id", task.ID, "items", len(q), "latency_ms", time.Since(start).Milliseconds())
	return nil
}
