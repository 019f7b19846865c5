package usecase

import (
	"context"
	"fmt"

	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/core/ports"
)

type AuthorizeUseCase struct {
	provider ports.OAuthProvider
	users    ports.UserRepository
	creds    ports.CredentialStore
}

func NewAuthorizeUseCase(
	provider ports.OAuthProvider,
	users ports.UserRepository,
	creds ports.CredentialStore,
) *AuthorizeUseCase {
	return &AuthorizeUseCase{
		provider: provider,
		users:    users,
		creds:    creds,
	}
}

func (uc *AuthorizeUseCase) AuthURL(state string) string {
	return uc.provider.AuthCodeURL(state)
}

// Authorize completes the authorization-code flow: it exchanges the
// code, upserts the user identity, and saves the credential record.
func (uc *AuthorizeUseCase) Authorize(ctx context.Context, code string) (*domain.User, error) {
	user, cred, err := uc.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	cred.UserID = user.ID
	if err := uc.creds.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}
	return user, nil
}
