// Package store persists finished quizzes in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/docquiz/internal/quiz"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no quiz has the requested ID.
var ErrNotFound = errors.New("quiz not found")

const schema = `
CREATE TABLE IF NOT EXISTS quizzes (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	filename     TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quizzes_hash ON quizzes(content_hash);

CREATE TABLE IF NOT EXISTS contexts (
	quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
	idx     INTEGER NOT NULL,
	text    TEXT NOT NULL,
	PRIMARY KEY (quiz_id, idx)
);

CREATE TABLE IF NOT EXISTS questions (
	quiz_id     TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
	idx         INTEGER NOT NULL,
	type        TEXT NOT NULL,
	question    TEXT NOT NULL,
	answer      TEXT NOT NULL,
	context     TEXT NOT NULL,
	placeholder INTEGER NOT NULL DEFAULT 0,
	choices     TEXT,
	PRIMARY KEY (quiz_id, idx)
);
`

// Quiz is a stored quiz with the contexts it was generated from.
type Quiz struct {
	ID          string      `json:"quiz_id"`
	Title       string      `json:"title"`
	Filename    string      `json:"filename"`
	ContentHash string      `json:"content_hash"`
	CreatedAt   time.Time   `json:"created_at"`
	Contexts    []string    `json:"contexts"`
	Items       []quiz.Item `json:"questions"`
}

// Summary is a list entry.
type Summary struct {
	ID        string    `json:"quiz_id"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	Questions int       `json:"questions"`
	CreatedAt time.Time `json:"created_at"`
}

// Store wraps the quiz database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func Open(path string) (*Store, error) {
	memory := path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if memory {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// SaveQuiz writes q and its contexts and questions in one transaction.
func (s *Store) SaveQuiz(ctx context.Context, q *Quiz) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quizzes (id, title, filename, content_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		q.ID, q.Title, q.Filename, q.ContentHash, q.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert quiz %s: %w", q.ID, err)
	}

	for i, c := range q.Contexts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contexts (quiz_id, idx, text) VALUES (?, ?, ?)`, q.ID, i, c,
		); err != nil {
			return fmt.Errorf("insert context %d: %w", i, err)
		}
	}

	for i, it := range q.Items {
		var choices sql.NullString
		if it.Choices != nil {
			b, err := json.Marshal(it.Choices)
			if err != nil {
				return fmt.Errorf("marshal choices %d: %w", i, err)
			}
			choices = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (quiz_id, idx, type, question, answer, context, placeholder, choices)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, i, string(it.Type), it.Question, it.Answer, it.Context, it.Placeholder, choices,
		); err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetQuiz loads a quiz with its contexts and questions in stored order.
func (s *Store) GetQuiz(ctx context.Context, id string) (*Quiz, error) {
	q := &Quiz{ID: id}
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT title, filename, content_hash, created_at FROM quizzes WHERE id = ?`, id,
	).Scan(&q.Title, &q.Filename, &q.ContentHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}
	q.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)

	rows, err := s.db.QueryContext(ctx, `SELECT text FROM contexts WHERE quiz_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("get contexts %s: %w", id, err)
	}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			rows.Close()
			return nil, err
		}
		q.Contexts = append(q.Contexts, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT type, question, answer, context, placeholder, choices FROM questions WHERE quiz_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("get questions %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it      quiz.Item
			typ     string
			choices sql.NullString
		)
		if err := rows.Scan(&typ, &it.Question, &it.Answer, &it.Context, &it.Placeholder, &choices); err != nil {
			return nil, err
		}
		it.Type = quiz.Type(typ)
		if choices.Valid {
			it.Choices = &quiz.Choices{}
			if err := json.Unmarshal([]byte(choices.String), it.Choices); err != nil {
				return nil, fmt.Errorf("decode choices: %w", err)
			}
		}
		q.Items = append(q.Items, it)
	}
	return q, rows.Err()
}

// ListQuizzes returns quizzes newest first.
func (s *Store) ListQuizzes(ctx context.Context, limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT q.id, q.title, q.filename, q.created_at,
		       (SELECT COUNT(*) FROM questions WHERE quiz_id = q.id)
		FROM quizzes q
		ORDER BY q.created_at DESC, q.id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			created string
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Filename, &created, &sum.Questions); err != nil {
			return nil, err
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteQuiz removes a quiz and everything stored with it.
func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quiz %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByHash returns the ID of a stored quiz built from the same content,
// or "" if there is none.
func (s *Store) FindByHash(ctx context.Context, hash string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM quizzes WHERE content_hash = ? ORDER BY created_at LIMIT 1`, hash,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find by hash: %w", err)
	}
	return id, nil
}
