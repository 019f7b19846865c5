package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rebelsai/docusight/internal/core/domain"
)

type FolderRepository struct {
	db *sql.DB
}

func NewFolderRepository(db *sql.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO folders (id, user_id, name, source_path, document_count, scanned_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, folder.ID, folder.UserID, folder.Name, folder.SourcePath, folder.DocumentCount, folder.ScannedAt)
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*domain.Folder, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, source_path, document_count, scanned_at
FROM folders
WHERE id = $1
`, id)

	var folder domain.Folder
	err := row.Scan(&folder.ID, &folder.UserID, &folder.Name, &folder.SourcePath, &folder.DocumentCount, &folder.ScannedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get folder", fmt.Errorf("folder %s", id))
		}
		return nil, fmt.Errorf("scan folder: %w", err)
	}
	return &folder, nil
}

func (r *FolderRepository) UpdateDocumentCount(ctx context.Context, id string, count int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE folders
SET document_count = $2
WHERE id = $1
`, id, count)
	if err != nil {
		return fmt.Errorf("update folder document count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update folder document count: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update folder document count", fmt.Errorf("folder %s", id))
	}
	return nil
}
