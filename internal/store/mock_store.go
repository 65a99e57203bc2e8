package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"studybuddy/internal/quiz"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateNote(ctx context.Context, title, body string) (Note, error) {
	args := m.Called(ctx, title, body)
	return args.Get(0).(Note), args.Error(1)
}

func (m *MockStore) GetNote(ctx context.Context, id uuid.UUID) (Note, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Note), args.Error(1)
}

func (m *MockStore) SaveSummary(ctx context.Context, id uuid.UUID, summary string) error {
	args := m.Called(ctx, id, summary)
	return args.Error(0)
}

func (m *MockStore) SaveQuiz(ctx context.Context, id uuid.UUID, q quiz.Quiz) error {
	args := m.Called(ctx, id, q)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
