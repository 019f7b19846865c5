package blob

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/core/ports"
)

// TokenRefresher exchanges a refresh token for a fresh access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken string, expiry time.Time, err error)
}

// ClientFactory issues per-user blob clients backed by stored
// credentials, refreshing expired tokens before handing a client out.
// Refreshes for the same user are serialized so concurrent callers
// trigger exactly one exchange and one save.
type ClientFactory struct {
	creds     ports.CredentialStore
	refresher TokenRefresher
	newClient func(accessToken string) ports.BlobClient

	// ExpiryMargin treats tokens expiring within the margin as already
	// expired so a client never starts work with seconds left.
	margin time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type FactoryOptions struct {
	ExpiryMargin time.Duration
}

const defaultExpiryMargin = 5 * time.Minute

func NewClientFactory(creds ports.CredentialStore, refresher TokenRefresher, newClient func(accessToken string) ports.BlobClient, options FactoryOptions) *ClientFactory {
	margin := options.ExpiryMargin
	if margin <= 0 {
		margin = defaultExpiryMargin
	}
	return &ClientFactory{
		creds:     creds,
		refresher: refresher,
		newClient: newClient,
		margin:    margin,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (f *ClientFactory) ClientFor(ctx context.Context, userID string) (ports.BlobClient, error) {
	if userID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "client for user", fmt.Errorf("empty user id"))
	}

	lock := f.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cred, err := f.creds.Get(ctx, userID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrAuthentication, "client for user", fmt.Errorf("no credential for user %s", userID))
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if cred.ExpiredAt(time.Now().UTC(), f.margin) {
		if err := f.refresh(ctx, cred); err != nil {
			return nil, err
		}
	}
	return f.newClient(cred.AccessToken), nil
}

// Release disposes a client obtained from ClientFor.
func (f *ClientFactory) Release(client ports.BlobClient) {
	if closer, ok := client.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (f *ClientFactory) refresh(ctx context.Context, cred *domain.Credential) error {
	accessToken, expiry, err := f.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		// A rejected exchange means revoked consent; surface it as an
		// authentication failure so callers abort instead of retrying.
		return fmt.Errorf("refresh credential: %w", err)
	}

	cred.AccessToken = accessToken
	cred.ExpiresAt = expiry.UTC()
	cred.UpdatedAt = time.Now().UTC()
	if err := f.creds.Save(ctx, cred); err != nil {
		return fmt.Errorf("save refreshed credential: %w", err)
	}

	slog.Info("credential_refreshed",
		slog.String("user_id", cred.UserID),
		slog.Time("expires_at", cred.ExpiresAt),
	)
	return nil
}

func (f *ClientFactory) userLock(userID string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[userID] = lock
	}
	return lock
}
