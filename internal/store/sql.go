package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"studybuddy/internal/quiz"
)

// sqlStore holds the queries shared by the SQLite and Postgres backends. Queries
// are written with ? placeholders and rebound for dialects that number them.
type sqlStore struct {
	db       *sql.DB
	numbered bool
}

func (s *sqlStore) q(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) CreateNote(ctx context.Context, title, body string) (Note, error) {
	now := time.Now().UTC()
	n := Note{ID: uuid.New(), Title: title, Body: body, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO notes(id, title, body, created_at, updated_at) VALUES(?,?,?,?,?)`),
		n.ID.String(), n.Title, n.Body, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

func (s *sqlStore) GetNote(ctx context.Context, id uuid.UUID) (Note, error) {
	var (
		n       Note
		rawQuiz string
	)
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT title, body, summary, quiz, created_at, updated_at FROM notes WHERE id=?`), id.String())
	if err := row.Scan(&n.Title, &n.Body, &n.Summary, &rawQuiz, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, ErrNoteNotFound
		}
		return Note{}, fmt.Errorf("failed to get note %s: %w", id, err)
	}
	q, err := quiz.Unmarshal(rawQuiz)
	if err != nil {
		return Note{}, fmt.Errorf("decode quiz for note %s: %w", id, err)
	}
	n.ID = id
	n.Quiz = q
	return n, nil
}

func (s *sqlStore) SaveSummary(ctx context.Context, id uuid.UUID, summary string) error {
	return s.update(ctx, `UPDATE notes SET summary=?, updated_at=? WHERE id=?`, summary, time.Now().UTC(), id.String())
}

func (s *sqlStore) SaveQuiz(ctx context.Context, id uuid.UUID, q quiz.Quiz) error {
	raw, err := q.Marshal()
	if err != nil {
		return fmt.Errorf("encode quiz: %w", err)
	}
	return s.update(ctx, `UPDATE notes SET quiz=?, updated_at=? WHERE id=?`, raw, time.Now().UTC(), id.String())
}

func (s *sqlStore) update(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
