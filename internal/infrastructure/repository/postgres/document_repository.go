package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rebelsai/docusight/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, folder_id, user_id, rel_path, size, file_created, file_modified, content_type, blob_path, text_size, convert_error, created_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, folder_id, user_id, rel_path, size, file_created, file_modified, content_type, blob_path, text_size, convert_error, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		doc.ID, doc.FolderID, doc.UserID, doc.RelPath, doc.Size, doc.FileCreated, doc.FileModified,
		doc.ContentType, nullable(doc.BlobPath), doc.TextSize, nullable(doc.ConvertError), doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

// ListByFolder returns the folder's documents in traversal order.
func (r *DocumentRepository) ListByFolder(ctx context.Context, folderID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE folder_id = $1
ORDER BY seq
`, folderID)
	if err != nil {
		return nil, fmt.Errorf("list documents by folder: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return docs, nil
}

// SetBlobPath records a successful text-artifact upload.
func (r *DocumentRepository) SetBlobPath(ctx context.Context, id, blobPath string, textSize int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET blob_path = $2, text_size = $3
WHERE id = $1
`, id, blobPath, textSize)
	if err != nil {
		return fmt.Errorf("set document blob path: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set document blob path: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "set document blob path", fmt.Errorf("document %s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc          domain.Document
		blobPath     sql.NullString
		convertError sql.NullString
	)
	err := row.Scan(
		&doc.ID, &doc.FolderID, &doc.UserID, &doc.RelPath, &doc.Size, &doc.FileCreated, &doc.FileModified,
		&doc.ContentType, &blobPath, &doc.TextSize, &convertError, &doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.BlobPath = blobPath.String
	doc.ConvertError = convertError.String
	return &doc, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
