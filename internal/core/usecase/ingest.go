package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/core/ports"
)

type IngestFolderUseCase struct {
	folders ports.FolderRepository
	docs    ports.DocumentRepository
	scanner ports.FolderScanner
	blobs   ports.BlobClientFactory
	queue   ports.MessageQueue
}

func NewIngestFolderUseCase(
	folders ports.FolderRepository,
	docs ports.DocumentRepository,
	scanner ports.FolderScanner,
	blobs ports.BlobClientFactory,
	queue ports.MessageQueue,
) *IngestFolderUseCase {
	return &IngestFolderUseCase{
		folders: folders,
		docs:    docs,
		scanner: scanner,
		blobs:   blobs,
		queue:   queue,
	}
}

// Ingest scans root, persists one folder row plus one document row per
// discovered file in traversal order, and uploads each converted text
// artifact under a deterministic remote path. Per-item upload failures
// are counted and skipped; an authentication failure aborts the run.
func (uc *IngestFolderUseCase) Ingest(
	ctx context.Context,
	userID, root string,
	policy domain.ScanPolicy,
) (*domain.IngestSummary, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(root) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest folder", errors.New("user id and root are required"))
	}

	entries, err := uc.scanner.Scan(ctx, root, policy)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}

	folder := &domain.Folder{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       filepath.Base(filepath.Clean(root)),
		SourcePath: root,
		ScannedAt:  time.Now().UTC(),
	}
	if err := uc.folders.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	summary := &domain.IngestSummary{FolderID: folder.ID}

	var client ports.BlobClient
	defer func() {
		if client != nil {
			uc.blobs.Release(client)
		}
	}()

	for entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc := &domain.Document{
			ID:           uuid.NewString(),
			FolderID:     folder.ID,
			UserID:       userID,
			RelPath:      entry.RelPath,
			Size:         entry.Size,
			FileCreated:  entry.FileCreated,
			FileModified: entry.FileModified,
			ContentType:  entry.ContentType,
			ConvertError: entry.ConvertError,
			CreatedAt:    time.Now().UTC(),
		}
		if err := uc.docs.Create(ctx, doc); err != nil {
			return nil, fmt.Errorf("create document %s: %w", entry.RelPath, err)
		}
		summary.Scanned++

		switch {
		case entry.ConvertError != "":
			summary.ConvertFailed++
		case !entry.HasText || strings.TrimSpace(entry.Text) == "":
			// a blank conversion result never becomes a blob artifact
			summary.NoText++
		default:
			if client == nil {
				client, err = uc.blobs.ClientFor(ctx, userID)
				if err != nil {
					return nil, fmt.Errorf("acquire blob client: %w", err)
				}
			}
			if err := uc.uploadText(ctx, client, doc, entry.Text); err != nil {
				if domain.IsKind(err, domain.ErrAuthentication) {
					return nil, err
				}
				slog.Warn("document_upload_failed",
					"folder_id", folder.ID,
					"document_id", doc.ID,
					"rel_path", doc.RelPath,
					"error", err,
				)
				summary.UploadFailed++
				continue
			}
			summary.Uploaded++
		}
	}

	if err := uc.folders.UpdateDocumentCount(ctx, folder.ID, summary.Scanned); err != nil {
		return nil, fmt.Errorf("update folder document count: %w", err)
	}

	if uc.queue != nil {
		if err := uc.queue.PublishFolderIngested(ctx, folder.ID); err != nil {
			// The summary is already persisted; a lost event only delays
			// asynchronous classification.
			slog.Warn("folder_ingested_publish_failed", "folder_id", folder.ID, "error", err)
		}
	}

	return summary, nil
}

func (uc *IngestFolderUseCase) uploadText(
	ctx context.Context,
	client ports.BlobClient,
	doc *domain.Document,
	text string,
) error {
	remotePath := BlobPathFor(doc.FolderID, doc.ID)
	if err := client.Upload(ctx, remotePath, strings.NewReader(text)); err != nil {
		return fmt.Errorf("upload %s: %w", remotePath, err)
	}
	if err := uc.docs.SetBlobPath(ctx, doc.ID, remotePath, int64(len(text))); err != nil {
		return fmt.Errorf("set blob path for %s: %w", doc.ID, err)
	}
	doc.BlobPath = remotePath
	doc.TextSize = int64(len(text))
	return nil
}

// BlobPathFor derives the deterministic remote path for a document's
// converted text artifact.
func BlobPathFor(folderID, documentID string) string {
	return fmt.Sprintf("/folders/%s/documents/%s.txt", folderID, documentID)
}
