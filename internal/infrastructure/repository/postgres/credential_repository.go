package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rebelsai/docusight/internal/core/domain"
)

// CredentialRepository persists one OAuth credential row per user.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Save upserts the user's single credential row. Idempotent.
func (r *CredentialRepository) Save(ctx context.Context, cred *domain.Credential) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO credentials (user_id, access_token, refresh_token, expires_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (user_id) DO UPDATE SET
	access_token = EXCLUDED.access_token,
	refresh_token = EXCLUDED.refresh_token,
	expires_at = EXCLUDED.expires_at,
	updated_at = EXCLUDED.updated_at
`, cred.UserID, cred.AccessToken, cred.RefreshToken, cred.ExpiresAt, cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Get(ctx context.Context, userID string) (*domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, access_token, refresh_token, expires_at, updated_at
FROM credentials
WHERE user_id = $1
`, userID)

	var cred domain.Credential
	err := row.Scan(&cred.UserID, &cred.AccessToken, &cred.RefreshToken, &cred.ExpiresAt, &cred.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get credential", fmt.Errorf("user %s", userID))
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	return &cred, nil
}
