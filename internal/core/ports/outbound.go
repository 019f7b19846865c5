package ports

import (
	"context"
	"io"
	"iter"

	"github.com/rebelsai/docusight/internal/core/domain"
)

// CredentialStore persists one OAuth credential record per user.
// Implementations never perform network I/O.
type CredentialStore interface {
	Save(ctx context.Context, cred *domain.Credential) error
	Get(ctx context.Context, userID string) (*domain.Credential, error)
}

// UserRepository persists provider identities.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// FolderRepository persists scan runs.
type FolderRepository interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByID(ctx context.Context, id string) (*domain.Folder, error)
	UpdateDocumentCount(ctx context.Context, id string, count int) error
}

// DocumentRepository persists and reads per-file scan results.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByFolder(ctx context.Context, folderID string) ([]domain.Document, error)
	SetBlobPath(ctx context.Context, id, blobPath string, textSize int64) error
}

// ClassificationRepository appends classification runs; rows are never
// overwritten in place.
type ClassificationRepository interface {
	Create(ctx context.Context, cls *domain.Classification) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.Classification, error)
}

// BlobClient is a live blob-storage client scoped to one user's account.
type BlobClient interface {
	Upload(ctx context.Context, remotePath string, data io.Reader) error
	Download(ctx context.Context, remotePath string) (io.ReadCloser, error)
}

// BlobClientFactory produces per-user blob clients, refreshing expired
// credentials transparently. Release must be invoked on every exit path.
type BlobClientFactory interface {
	ClientFor(ctx context.Context, userID string) (BlobClient, error)
	Release(client BlobClient)
}

// FolderScanner walks a directory or extracted archive and reports
// entries lazily, in traversal order. The returned sequence is
// restartable; fatal root errors surface from Scan itself.
type FolderScanner interface {
	Scan(ctx context.Context, root string, policy domain.ScanPolicy) (iter.Seq[domain.ScanEntry], error)
}

// TextClassifier runs the loaded classification model over a set of
// texts. Results preserve input order; per-item failures are reported
// in the corresponding PredictionResult, not as a call-level error.
type TextClassifier interface {
	ClassifyTexts(ctx context.Context, texts []string) ([]domain.PredictionResult, error)
	ModelName() string
}

// OAuthProvider performs authorization-code and account lookups against
// the blob-storage provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.User, *domain.Credential, error)
}

// MessageQueue publishes/consumes folder-ingested events.
type MessageQueue interface {
	PublishFolderIngested(ctx context.Context, folderID string) error
	SubscribeFolderIngested(ctx context.Context, handler func(context.Context, string) error) error
}
