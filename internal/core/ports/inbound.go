package ports

import (
	"context"

	"github.com/rebelsai/docusight/internal/core/domain"
)

// FolderIngestor is the inbound contract for folder-insight ingestion.
type FolderIngestor interface {
	Ingest(ctx context.Context, userID, root string, policy domain.ScanPolicy) (*domain.IngestSummary, error)
}

// DocumentClassifierService is the inbound contract for classification runs.
type DocumentClassifierService interface {
	ClassifyDocuments(ctx context.Context, documentIDs []string) ([]domain.ClassifyOutcome, error)
	ClassifyFolder(ctx context.Context, folderID string) ([]domain.ClassifyOutcome, error)
}

// Authorizer is the inbound contract for the provider OAuth flow.
type Authorizer interface {
	AuthURL(state string) string
	Authorize(ctx context.Context, code string) (*domain.User, error)
}
