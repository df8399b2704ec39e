package storage

import (
	"context"
	"errors"
	"fmt"

	"paperchat/internal/models"
	"paperchat/internal/util"

	"github.com/jackc/pgx/v5"
)

// ContentRepo is the Postgres adapter for a paper's extracted content units.
// Reads are concurrent-safe; writes happen only from the extraction pipeline.
type ContentRepo struct {
	db *DB
}

func NewContentRepo(db *DB) *ContentRepo {
	return &ContentRepo{db: db}
}

func (r *ContentRepo) GetContentUnits(ctx context.Context, paperID string) ([]models.ContentUnit, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT unit_id, paper_id, kind, text, COALESCE(structural_tag,''), position, COALESCE(locator,''), created_at
FROM content_units
WHERE paper_id=$1
ORDER BY position ASC`, paperID)
	if err != nil {
		return nil, fmt.Errorf("list content units: %w", err)
	}
	defer rows.Close()

	out := make([]models.ContentUnit, 0, 64)
	for rows.Next() {
		var u models.ContentUnit
		if err := rows.Scan(&u.UnitID, &u.PaperID, &u.Kind, &u.Text, &u.StructuralTag, &u.Position, &u.Locator, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan content unit: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content units: %w", err)
	}
	return out, nil
}

func (r *ContentRepo) GetContentUnitByLocator(ctx context.Context, paperID, locator string) (models.ContentUnit, error) {
	var u models.ContentUnit
	err := r.db.Pool.QueryRow(ctx, `
SELECT unit_id, paper_id, kind, text, COALESCE(structural_tag,''), position, COALESCE(locator,''), created_at
FROM content_units
WHERE paper_id=$1 AND locator=$2
ORDER BY position ASC
LIMIT 1`, paperID, util.NormalizeLocator(locator)).
		Scan(&u.UnitID, &u.PaperID, &u.Kind, &u.Text, &u.StructuralTag, &u.Position, &u.Locator, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ContentUnit{}, fmt.Errorf("content unit %s/%s: %w", paperID, locator, util.ErrNotFound)
	}
	if err != nil {
		return models.ContentUnit{}, fmt.Errorf("get content unit by locator: %w", err)
	}
	return u, nil
}

func (r *ContentRepo) UpsertContentUnits(ctx context.Context, units []models.ContentUnit) error {
	if len(units) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx upsert units: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, u := range units {
		_, err := tx.Exec(ctx, `
INSERT INTO content_units (unit_id, paper_id, kind, text, structural_tag, position, locator)
VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, NULLIF($7,''))
ON CONFLICT (unit_id)
DO UPDATE SET
  text = EXCLUDED.text,
  structural_tag = EXCLUDED.structural_tag,
  position = EXCLUDED.position,
  locator = EXCLUDED.locator`,
			u.UnitID, u.PaperID, u.Kind, u.Text, u.StructuralTag, u.Position, u.Locator,
		)
		if err != nil {
			return fmt.Errorf("upsert content unit %s: %w", u.UnitID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit units tx: %w", err)
	}
	return nil
}
