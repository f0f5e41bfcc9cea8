package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/mindcoach/internal/domain"
)

const insertMessageSQL = `
INSERT INTO chat_messages (id, user_name, role, text, created_at)
VALUES ($1, $2, $3, $4, $5)`

// Rows are picked newest first so the limit keeps the most recent ones, then
// flipped back to chronological order.
const findMessagesSQL = `
SELECT role, text, created_at FROM (
    SELECT seq, role, text, created_at
    FROM chat_messages
    WHERE user_name = $1
      AND role = ANY($2)
      AND ($3::timestamptz IS NULL OR created_at >= $3)
    ORDER BY created_at DESC, seq DESC
    LIMIT $4
) recent
ORDER BY created_at ASC, seq ASC`

// PostgresStore keeps chat history in the chat_messages table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) History(userName string) domain.ChatHistoryStore {
	return &postgresHistory{db: s.db, userName: userName}
}

type postgresHistory struct {
	db       *pgxpool.Pool
	userName string
}

func (h *postgresHistory) Append(ctx context.Context, dialog domain.Dialog) error {
	tx, err := h.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range dialog.Messages() {
		if _, err := tx.Exec(ctx, insertMessageSQL,
			uuid.New(), h.userName, string(m.Role), m.Text, createdAtToPg(m.Time),
		); err != nil {
			return fmt.Errorf("insert %s message: %w", m.Role, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (h *postgresHistory) Find(ctx context.Context, q domain.FindQuery) ([]domain.ChatMessage, error) {
	q = q.Normalize()

	roles := make([]string, len(q.Roles))
	for i, r := range q.Roles {
		roles[i] = string(r)
	}

	rows, err := h.db.Query(ctx, findMessagesSQL, h.userName, roles, sinceToPg(q.Since), q.Limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var (
			role      string
			text      string
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&role, &text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, domain.ChatMessage{
			Time: createdAtFromPg(createdAt),
			Role: domain.Role(role),
			Text: text,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}
