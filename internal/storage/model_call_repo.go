package storage

import (
	"context"
	"fmt"
)

type ModelCallRecord struct {
	Operation    string
	PaperID      string
	SessionID    string
	ProviderName string
	Model        string
	Status       string
	ErrorType    string
}

// ModelCallRepo is an append-only audit log of every model invocation
// attempt, successful or not.
type ModelCallRepo struct {
	db *DB
}

func NewModelCallRepo(db *DB) *ModelCallRepo {
	return &ModelCallRepo{db: db}
}

func (r *ModelCallRepo) LogCall(ctx context.Context, rec ModelCallRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO model_calls (operation, paper_id, session_id, provider_name, model, status, error_type)
VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, NULLIF($5,''), $6, NULLIF($7,''))`,
		rec.Operation, rec.PaperID, rec.SessionID, rec.ProviderName, rec.Model, rec.Status, rec.ErrorType,
	)
	if err != nil {
		return fmt.Errorf("log model call: %w", err)
	}
	return nil
}
