package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"studybuddy/internal/quiz"
)

var ErrNoteNotFound = errors.New("note not found")

type Note struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Summary   string    `json:"summary,omitempty"`
	Quiz      quiz.Quiz `json:"quiz,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the note persistence contract the AI endpoints and the worker depend on.
type Store interface {
	CreateNote(ctx context.Context, title, body string) (Note, error)
	GetNote(ctx context.Context, id uuid.UUID) (Note, error)
	SaveSummary(ctx context.Context, id uuid.UUID, summary string) error
	SaveQuiz(ctx context.Context, id uuid.UUID, q quiz.Quiz) error
	Close() error
}
