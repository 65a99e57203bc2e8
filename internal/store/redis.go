package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studybuddy/internal/quiz"
)

// Key prefix for note hashes
const noteKeyPrefix = "note:"

// RedisStore keeps each note as a hash under note:{id}.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed store and checks the connection.
func NewRedis(addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func noteKey(id uuid.UUID) string {
	return noteKeyPrefix + id.String()
}

func (s *RedisStore) CreateNote(ctx context.Context, title, body string) (Note, error) {
	now := time.Now().UTC()
	n := Note{ID: uuid.New(), Title: title, Body: body, CreatedAt: now, UpdatedAt: now}
	if err := s.client.HSet(ctx, noteKey(n.ID), noteFields(n)).Err(); err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

func (s *RedisStore) GetNote(ctx context.Context, id uuid.UUID) (Note, error) {
	fields, err := s.client.HGetAll(ctx, noteKey(id)).Result()
	if err != nil {
		return Note{}, fmt.Errorf("failed to get note %s: %w", id, err)
	}
	// HGETALL on a missing key yields an empty map rather than redis.Nil.
	if len(fields) == 0 {
		return Note{}, ErrNoteNotFound
	}
	return noteFromFields(id, fields)
}

func (s *RedisStore) SaveSummary(ctx context.Context, id uuid.UUID, summary string) error {
	return s.update(ctx, id, "summary", summary)
}

func (s *RedisStore) SaveQuiz(ctx context.Context, id uuid.UUID, q quiz.Quiz) error {
	raw, err := q.Marshal()
	if err != nil {
		return fmt.Errorf("encode quiz: %w", err)
	}
	return s.update(ctx, id, "quiz", raw)
}

// update sets one field only if the note exists.
func (s *RedisStore) update(ctx context.Context, id uuid.UUID, field, value string) error {
	key := noteKey(id)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return ErrNoteNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, value, "updated_at", time.Now().UTC().Format(time.RFC3339Nano))
			return nil
		})
		return err
	}, key)
	if err != nil && !errors.Is(err, ErrNoteNotFound) {
		return fmt.Errorf("update note %s: %w", id, err)
	}
	return err
}

// Close closes the store connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func noteFields(n Note) map[string]any {
	return map[string]any{
		"title":      n.Title,
		"body":       n.Body,
		"summary":    n.Summary,
		"quiz":       "",
		"created_at": n.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": n.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func noteFromFields(id uuid.UUID, fields map[string]string) (Note, error) {
	n := Note{
		ID:      id,
		Title:   fields["title"],
		Body:    fields["body"],
		Summary: fields["summary"],
	}
	q, err := quiz.Unmarshal(fields["quiz"])
	if err != nil {
		return Note{}, fmt.Errorf("decode quiz for note %s: %w", id, err)
	}
	n.Quiz = q
	if n.CreatedAt, err = parseTime(fields["created_at"]); err != nil {
		return Note{}, fmt.Errorf("decode created_at for note %s: %w", id, err)
	}
	if n.UpdatedAt, err = parseTime(fields["updated_at"]); err != nil {
		return Note{}, fmt.Errorf("decode updated_at for note %s: %w", id, err)
	}
	return n, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
