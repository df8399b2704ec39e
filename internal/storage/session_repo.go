package storage

import (
	"context"
	"fmt"

	"paperchat/internal/models"
)

// SessionRepo stores the full chat history. What reaches the prompt is
// bounded separately by the conversation window; long-term history stays here.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) AppendTurn(ctx context.Context, sessionID string, turn models.ChatTurn) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO chat_turns (session_id, role, text, created_at)
VALUES ($1, $2, $3, $4)`,
		sessionID, turn.Role, turn.Text, turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append chat turn: %w", err)
	}
	return nil
}

func (r *SessionRepo) ListTurns(ctx context.Context, sessionID string) ([]models.ChatTurn, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT role, text, created_at
FROM chat_turns
WHERE session_id=$1
ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat turns: %w", err)
	}
	defer rows.Close()

	out := make([]models.ChatTurn, 0, 16)
	for rows.Next() {
		var t models.ChatTurn
		if err := rows.Scan(&t.Role, &t.Text, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat turns: %w", err)
	}
	return out, nil
}
