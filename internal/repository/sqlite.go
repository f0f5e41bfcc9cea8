package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/mindcoach/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps chat history in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS chat_messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		user_name TEXT NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_user_time ON chat_messages(user_name, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(userName string) domain.ChatHistoryStore {
	return &sqliteHistory{db: s.db, userName: userName}
}

type sqliteHistory struct {
	db       *sql.DB
	userName string
}

func (h *sqliteHistory) Append(ctx context.Context, dialog domain.Dialog) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			slog.Warn("rollback failed", "error", rbErr)
		}
	}()

	query := `INSERT INTO chat_messages (id, user_name, role, text, created_at) VALUES (?, ?, ?, ?, ?)`
	for _, m := range dialog.Messages() {
		if _, err := tx.ExecContext(ctx, query,
			uuid.NewString(), h.userName, string(m.Role), m.Text, m.Time.UnixNano(),
		); err != nil {
			return fmt.Errorf("insert %s message: %w", m.Role, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (h *sqliteHistory) Find(ctx context.Context, q domain.FindQuery) ([]domain.ChatMessage, error) {
	q = q.Normalize()

	args := []interface{}{h.userName}
	placeholders := make([]string, len(q.Roles))
	for i, r := range q.Roles {
		placeholders[i] = "?"
		args = append(args, string(r))
	}

	var since sql.NullInt64
	if q.Since != nil {
		since = sql.NullInt64{Int64: q.Since.UnixNano(), Valid: true}
	}
	args = append(args, since, since, q.Limit)

	query := `
		SELECT role, text, created_at FROM (
			SELECT seq, role, text, created_at
			FROM chat_messages
			WHERE user_name = ?
			  AND role IN (` + strings.Join(placeholders, ", ") + `)
			  AND (? IS NULL OR created_at >= ?)
			ORDER BY created_at DESC, seq DESC
			LIMIT ?
		)
		ORDER BY created_at ASC, seq ASC`

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close message rows", "error", closeErr)
		}
	}()

	msgs := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var (
			role      string
			text      string
			createdAt int64
		)
		if err := rows.Scan(&role, &text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msgs = append(msgs, domain.ChatMessage{
			Time: time.Unix(0, createdAt),
			Role: domain.Role(role),
			Text: text,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}
