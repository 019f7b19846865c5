package dropbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/rebelsai/docusight/internal/core/domain"
)

const defaultAPIURL = "https://api.dropboxapi.com"

// OAuth runs the Dropbox authorization-code and refresh-token exchanges.
type OAuth struct {
	conf   *oauth2.Config
	apiURL string
}

type OAuthOptions struct {
	// AuthURL/TokenURL/APIURL override provider endpoints, for tests.
	AuthURL  string
	TokenURL string
	APIURL   string
}

func NewOAuth(clientID, clientSecret, redirectURL string, options OAuthOptions) *OAuth {
	endpoint := endpoints.Dropbox
	if options.AuthURL != "" {
		endpoint.AuthURL = options.AuthURL
	}
	if options.TokenURL != "" {
		endpoint.TokenURL = options.TokenURL
	}
	apiURL := options.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &OAuth{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoint,
		},
		apiURL: strings.TrimRight(apiURL, "/"),
	}
}

// AuthCodeURL requests offline access so the provider issues a refresh
// token alongside the short-lived access token.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("token_access_type", "offline"))
}

// Exchange completes the code flow and resolves the account identity
// behind the token.
func (o *OAuth) Exchange(ctx context.Context, code string) (*domain.User, *domain.Credential, error) {
	token, err := o.conf.Exchange(ctx, code)
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrAuthentication, "exchange code", err)
	}
	if token.RefreshToken == "" {
		return nil, nil, domain.WrapError(domain.ErrAuthentication, "exchange code", fmt.Errorf("provider returned no refresh token"))
	}

	account, err := o.currentAccount(ctx, token.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve account: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:          uuid.NewString(),
		AccountID:   account.AccountID,
		DisplayName: account.Name.DisplayName,
		Email:       account.Email,
		CreatedAt:   now,
	}
	cred := &domain.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.UTC(),
		UpdatedAt:    now,
	}
	return user, cred, nil
}

// Refresh performs a refresh-token exchange. A rejected exchange means
// revoked consent or a stale refresh token and is an authentication
// failure, never retried here.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	seed := &oauth2.Token{RefreshToken: refreshToken}
	token, err := o.conf.TokenSource(ctx, seed).Token()
	if err != nil {
		return "", time.Time{}, domain.WrapError(domain.ErrAuthentication, "refresh token", err)
	}
	return token.AccessToken, token.Expiry.UTC(), nil
}

type accountInfo struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      struct {
		DisplayName string `json:"display_name"`
	} `json:"name"`
}

func (o *OAuth) currentAccount(ctx context.Context, accessToken string) (*accountInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL+"/2/users/get_current_account", nil)
	if err != nil {
		return nil, fmt.Errorf("create account request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("account request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("account request status: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var account accountInfo
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("decode account response: %w", err)
	}
	return &account, nil
}
