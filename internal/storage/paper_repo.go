package storage

import (
	"context"
	"errors"
	"fmt"

	"paperchat/internal/models"
	"paperchat/internal/util"

	"github.com/jackc/pgx/v5"
)

type PaperRepo struct {
	db *DB
}

func NewPaperRepo(db *DB) *PaperRepo {
	return &PaperRepo{db: db}
}

func (r *PaperRepo) UpsertPaper(ctx context.Context, m models.PaperMetadata) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO papers (paper_id, title, authors, filename)
VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4)
ON CONFLICT (paper_id)
DO UPDATE SET
  title = COALESCE(EXCLUDED.title, papers.title),
  authors = COALESCE(EXCLUDED.authors, papers.authors),
  filename = EXCLUDED.filename,
  updated_at = NOW()`,
		m.PaperID, m.Title, m.Authors, m.Filename,
	)
	if err != nil {
		return fmt.Errorf("upsert paper: %w", err)
	}
	return nil
}

func (r *PaperRepo) GetPaper(ctx context.Context, paperID string) (models.PaperMetadata, error) {
	var m models.PaperMetadata
	err := r.db.Pool.QueryRow(ctx, `
SELECT paper_id, COALESCE(title,''), COALESCE(authors,''), COALESCE(filename,'')
FROM papers
WHERE paper_id=$1`, paperID).
		Scan(&m.PaperID, &m.Title, &m.Authors, &m.Filename)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.PaperMetadata{}, fmt.Errorf("paper %s: %w", paperID, util.ErrNotFound)
	}
	if err != nil {
		return models.PaperMetadata{}, fmt.Errorf("get paper: %w", err)
	}
	return m, nil
}
