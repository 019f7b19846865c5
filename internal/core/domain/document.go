package domain

import "time"

// User is the owner of folders and of exactly one credential record.
// AccountID is the stable external identifier issued by the OAuth provider.
type User struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// Credential holds one user's OAuth token pair. It is mutated only by the
// blob client factory's refresh step.
type Credential struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExpiredAt reports whether the access token must be refreshed before use.
// The margin guards against the token expiring mid-request.
func (c *Credential) ExpiredAt(now time.Time, margin time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return !c.ExpiresAt.After(now.Add(margin))
}

// Folder is one scan run: its root plus the documents discovered under it.
// Re-scanning the same root creates a new folder row, never mutates an old one.
type Folder struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	SourcePath    string    `json:"source_path"`
	DocumentCount int       `json:"document_count"`
	ScannedAt     time.Time `json:"scanned_at"`
}

type Document struct {
	ID           string    `json:"id"`
	FolderID     string    `json:"folder_id"`
	UserID       string    `json:"user_id"`
	RelPath      string    `json:"rel_path"`
	Size         int64     `json:"size"`
	FileCreated  time.Time `json:"file_created"`
	FileModified time.Time `json:"file_modified"`
	ContentType  string    `json:"content_type"`
	// BlobPath stays empty until the converted text artifact was uploaded.
	BlobPath     string    `json:"blob_path,omitempty"`
	TextSize     int64     `json:"text_size"`
	ConvertError string    `json:"convert_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Classifiable reports whether the document has an uploaded text artifact.
func (d *Document) Classifiable() bool {
	return d.BlobPath != ""
}

// Classification is one classification run's result for a document.
// Rows accumulate; the latest by CreatedAt is the current result.
type Classification struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Model      string    `json:"model"`
	Label      string    `json:"label"`
	Score      float64   `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

// Normalized sentiment labels.
const (
	LabelPositive = "Positive"
	LabelNeutral  = "Neutral"
	LabelNegative = "Negative"
)
