// Package researchdb persists insight sessions, insights, conversation
// threads and document metadata in SQLite. All rows are keyed by owner;
// deleting a session cascades to its insights, deleting a thread cascades
// to its messages.
package researchdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/SamWheatley/rainier/internal/domain"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) init() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS insight_sessions (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	dataset TEXT NOT NULL,
	model TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS insights (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES insight_sessions(id) ON DELETE CASCADE,
	owner_id TEXT NOT NULL,
	category TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	confidence REAL NOT NULL,
	sources TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS threads (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	sources TEXT NOT NULL,
	badge TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	owner_id TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	title TEXT NOT NULL,
	size INTEGER NOT NULL,
	shared INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (owner_id, storage_key)
);
CREATE INDEX IF NOT EXISTS idx_insights_session ON insights(session_id);
CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// --- insight sessions ---

func (s *Store) CreateSession(ctx context.Context, sess *domain.InsightSession) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insight_sessions (id, owner_id, title, dataset, model, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.OwnerID, sess.Title, string(sess.Dataset), sess.Model, sess.CreatedAt)
	return err
}

func (s *Store) ListSessions(ctx context.Context, ownerID string) ([]domain.InsightSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, dataset, model, created_at FROM insight_sessions WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InsightSession
	for rows.Next() {
		var sess domain.InsightSession
		var dataset string
		if err := rows.Scan(&sess.ID, &sess.OwnerID, &sess.Title, &dataset, &sess.Model, &sess.CreatedAt); err != nil {
			return nil, err
		}
		sess.Dataset = domain.Scope(dataset)
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *Store) GetSession(ctx context.Context, ownerID, id string) (*domain.InsightSession, error) {
	var sess domain.InsightSession
	var dataset string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, dataset, model, created_at FROM insight_sessions WHERE owner_id = ? AND id = ?`,
		ownerID, id).Scan(&sess.ID, &sess.OwnerID, &sess.Title, &dataset, &sess.Model, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.Dataset = domain.Scope(dataset)
	return &sess, nil
}

// DeleteSession removes a session; its insights go with it via cascade.
func (s *Store) DeleteSession(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM insight_sessions WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- insights ---

func (s *Store) CreateInsight(ctx context.Context, in *domain.Insight) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	sources, err := json.Marshal(in.Sources)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO insights (id, session_id, owner_id, category, title, description, confidence, sources, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.SessionID, in.OwnerID, string(in.Category), in.Title, in.Description, in.Confidence, string(sources), in.CreatedAt)
	return err
}

func (s *Store) ListInsights(ctx context.Context, ownerID, sessionID string) ([]domain.Insight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, owner_id, category, title, description, confidence, sources, created_at
		 FROM insights WHERE owner_id = ? AND session_id = ? ORDER BY created_at, id`,
		ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Insight
	for rows.Next() {
		var in domain.Insight
		var category, sources string
		if err := rows.Scan(&in.ID, &in.SessionID, &in.OwnerID, &category, &in.Title, &in.Description, &in.Confidence, &sources, &in.CreatedAt); err != nil {
			return nil, err
		}
		in.Category = domain.Category(category)
		if err := json.Unmarshal([]byte(sources), &in.Sources); err != nil {
			in.Sources = nil
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// RenameInsight changes the one user-mutable field.
func (s *Store) RenameInsight(ctx context.Context, ownerID, id, title string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE insights SET title = ? WHERE owner_id = ? AND id = ?`, title, ownerID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) DeleteInsight(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM insights WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// --- threads and messages ---

func (s *Store) CreateThread(ctx context.Context, th *domain.Thread) error {
	if th.ID == "" {
		th.ID = uuid.NewString()
	}
	if th.CreatedAt.IsZero() {
		th.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO threads (id, owner_id, title, created_at) VALUES (?, ?, ?, ?)`,
		th.ID, th.OwnerID, th.Title, th.CreatedAt)
	return err
}

func (s *Store) GetThread(ctx context.Context, ownerID, id string) (*domain.Thread, error) {
	var th domain.Thread
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, created_at FROM threads WHERE owner_id = ? AND id = ?`,
		ownerID, id).Scan(&th.ID, &th.OwnerID, &th.Title, &th.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &th, nil
}

func (s *Store) ListThreads(ctx context.Context, ownerID string) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, created_at FROM threads WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Thread
	for rows.Next() {
		var th domain.Thread
		if err := rows.Scan(&th.ID, &th.OwnerID, &th.Title, &th.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, th)
	}
	return out, rows.Err()
}

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	sources, err := json.Marshal(msg.Sources)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (id, thread_id, role, content, sources, badge, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ThreadID, msg.Role, msg.Content, string(sources), msg.Badge, msg.CreatedAt)
	return err
}

func (s *Store) ListMessages(ctx context.Context, threadID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, thread_id, role, content, sources, badge, created_at FROM messages WHERE thread_id = ? ORDER BY created_at, id`,
		threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var msg domain.Message
		var sources string
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.Role, &msg.Content, &sources, &msg.Badge, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
			msg.Sources = nil
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// CountMessages counts the owner's conversation turns across all threads.
// The synthesis pipeline reports this alongside the file count.
func (s *Store) CountMessages(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages m JOIN threads t ON m.thread_id = t.id WHERE t.owner_id = ?`,
		ownerID).Scan(&n)
	return n, err
}

// --- documents ---

// UpsertDocument registers listing metadata for a remote document. Bodies
// are never stored here.
func (s *Store) UpsertDocument(ctx context.Context, ownerID string, doc domain.Document) error {
	shared := 0
	if doc.Shared {
		shared = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (owner_id, storage_key, title, size, shared, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id, storage_key) DO UPDATE SET title = excluded.title, size = excluded.size, shared = excluded.shared`,
		ownerID, doc.StorageKey, doc.Title, doc.Size, shared, time.Now().UTC())
	return err
}

// ListDocuments returns every document visible to the owner: their own plus
// all shared ones.
func (s *Store) ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT storage_key, title, size, shared FROM documents WHERE owner_id = ? OR shared = 1 ORDER BY size, storage_key`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var doc domain.Document
		var shared int
		if err := rows.Scan(&doc.StorageKey, &doc.Title, &doc.Size, &shared); err != nil {
			return nil, err
		}
		doc.ID = doc.StorageKey
		doc.Origin = domain.OriginRemote
		doc.Shared = shared == 1
		out = append(out, doc)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
