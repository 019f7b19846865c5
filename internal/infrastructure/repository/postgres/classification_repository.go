package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rebelsai/docusight/internal/core/domain"
)

// ClassificationRepository appends classification runs. Prior rows are
// never mutated; the latest row by created_at is the current result.
type ClassificationRepository struct {
	db *sql.DB
}

func NewClassificationRepository(db *sql.DB) *ClassificationRepository {
	return &ClassificationRepository{db: db}
}

func (r *ClassificationRepository) Create(ctx context.Context, cls *domain.Classification) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO classifications (id, document_id, model, label, score, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, cls.ID, cls.DocumentID, cls.Model, cls.Label, cls.Score, cls.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert classification: %w", err)
	}
	return nil
}

func (r *ClassificationRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Classification, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, model, label, score, created_at
FROM classifications
WHERE document_id = $1
ORDER BY created_at DESC
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list classifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Classification
	for rows.Next() {
		var cls domain.Classification
		if err := rows.Scan(&cls.ID, &cls.DocumentID, &cls.Model, &cls.Label, &cls.Score, &cls.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan classification row: %w", err)
		}
		out = append(out, cls)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classification rows: %w", err)
	}
	return out, nil
}
