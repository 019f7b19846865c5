package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rebelsai/docusight/internal/core/domain"
)

func TestAuthorizeSavesUserAndCredential(t *testing.T) {
	provider := &providerFake{
		user: &domain.User{ID: "u1", AccountID: "dbid:abc", DisplayName: "Pat", Email: "pat@example.com"},
		cred: &domain.Credential{
			AccessToken:  "at",
			RefreshToken: "rt",
			ExpiresAt:    time.Now().Add(4 * time.Hour),
		},
	}
	users := &userRepoFake{}
	creds := &credStoreFake{}
	uc := NewAuthorizeUseCase(provider, users, creds)

	user, err := uc.Authorize(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if users.upserted == nil || users.upserted.AccountID != "dbid:abc" {
		t.Fatalf("expected user upsert, got %+v", users.upserted)
	}
	if creds.saved == nil {
		t.Fatalf("expected credential save")
	}
	if creds.saved.UserID != user.ID {
		t.Fatalf("expected credential bound to user %s, got %s", user.ID, creds.saved.UserID)
	}
	if creds.saved.RefreshToken != "rt" {
		t.Fatalf("expected refresh token persisted, got %q", creds.saved.RefreshToken)
	}
}

func TestAuthorizeExchangeFailure(t *testing.T) {
	provider := &providerFake{err: domain.WrapError(domain.ErrAuthentication, "exchange code", errors.New("invalid_grant"))}
	uc := NewAuthorizeUseCase(provider, &userRepoFake{}, &credStoreFake{})

	_, err := uc.Authorize(context.Background(), "bad-code")
	if !domain.IsKind(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestAuthorizeAuthURLCarriesState(t *testing.T) {
	uc := NewAuthorizeUseCase(&providerFake{}, &userRepoFake{}, &credStoreFake{})
	if url := uc.AuthURL("state-1"); !strings.Contains(url, "state-1") {
		t.Fatalf("expected state in auth url, got %s", url)
	}
}
