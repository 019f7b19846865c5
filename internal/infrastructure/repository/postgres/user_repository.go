package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rebelsai/docusight/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert keys on the provider account id so repeated OAuth callbacks
// for the same account update the profile instead of duplicating it.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO users (id, account_id, display_name, email, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (account_id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	email = EXCLUDED.email
RETURNING id
`, user.ID, user.AccountID, user.DisplayName, user.Email, user.CreatedAt)

	if err := row.Scan(&user.ID); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, account_id, display_name, email, created_at
FROM users
WHERE id = $1
`, id)

	var user domain.User
	err := row.Scan(&user.ID, &user.AccountID, &user.DisplayName, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("user %s", id))
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
