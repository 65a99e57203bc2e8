package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studybuddy/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	TaskTypeSummarize TaskType = "summarize"
	TaskTypeQuiz      TaskType = "quiz"
)

// maxPublishDelay caps the wait between publish attempts.
const maxPublishDelay = 10 * time.Second

// Task represents a unit of work handed from the API to the workers.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

// NotePayload is the body of summarize and quiz tasks.
type NotePayload struct {
	NoteID uuid.UUID `json:"note_id"`
}

// NewNoteTask builds a single-attempt task for one note. Model calls are not
// retried, so neither is the task.
func NewNoteTask(taskType TaskType, noteID uuid.UUID) (Task, error) {
	payload, err := json.Marshal(NotePayload{NoteID: noteID})
	if err != nil {
		return Task{}, err
	}
	return Task{ID: uuid.New(), Type: taskType, Payload: payload, MaxAttempts: 1}, nil
}

// DecodeNotePayload reads the payload written by NewNoteTask.
func DecodeNotePayload(task Task) (NotePayload, error) {
	var p NotePayload
	if err := json.Unmarshal(task.Payload, &p); err != nil {
		return NotePayload{}, Permanent(fmt.Errorf("decode payload: %w", err))
	}
	if p.NoteID == uuid.Nil {
		return NotePayload{}, Permanent(errors.New("payload missing note_id"))
	}
	return p, nil
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks a handler error that must not be redelivered.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// EnqueueWithRetry attempts to enqueue with retries and capped exponential backoff.
// Only the publish is retried; the task itself keeps its MaxAttempts.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := q.Enqueue(ctx, task); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.Capped(attempt, base, maxPublishDelay)):
		}
	}
	return nil
}
