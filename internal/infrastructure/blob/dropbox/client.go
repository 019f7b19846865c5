package dropbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/infrastructure/resilience"
)

const defaultContentURL = "https://content.dropboxapi.com"

// Client talks to the Dropbox content API with one user's access token.
// Per-user namespace isolation is the provider's: a token only reaches
// its own account's files.
type Client struct {
	contentURL  string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	executor    *resilience.Executor
}

type Options struct {
	// ContentURL overrides the content API host, for tests.
	ContentURL string
	Timeout    time.Duration
	// RateLimit bounds request frequency against the provider.
	RateLimit rate.Limit
	RateBurst int
	Executor  *resilience.Executor
}

func NewClient(accessToken string, options Options) *Client {
	contentURL := options.ContentURL
	if contentURL == "" {
		contentURL = defaultContentURL
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := options.RateLimit
	if limit <= 0 {
		limit = rate.Limit(10)
	}
	burst := options.RateBurst
	if burst <= 0 {
		burst = 5
	}
	return &Client{
		contentURL:  strings.TrimRight(contentURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, burst),
		executor:    options.Executor,
	}
}

// Upload overwrites the file at remotePath with data. The payload is
// buffered so bounded retries can replay it.
func (c *Client) Upload(ctx context.Context, remotePath string, data io.Reader) error {
	payload, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read upload payload: %w", err)
	}

	arg := fmt.Sprintf(`{"path":%q,"mode":"overwrite","mute":true}`, remotePath)
	call := func(ctx context.Context) error {
		return c.contentCall(ctx, "/2/files/upload", arg, bytes.NewReader(payload), nil)
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "dropbox.upload", call, classifyDropboxError)
	} else {
		err = call(ctx)
	}
	return wrapDropboxError("upload", domain.ErrUpload, err)
}

// Download streams the file at remotePath. The caller owns the reader.
func (c *Client) Download(ctx context.Context, remotePath string) (io.ReadCloser, error) {
	arg := fmt.Sprintf(`{"path":%q}`, remotePath)

	var body io.ReadCloser
	call := func(ctx context.Context) error {
		return c.contentCall(ctx, "/2/files/download", arg, nil, &body)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "dropbox.download", call, classifyDropboxError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapDropboxError("download", domain.ErrTemporary, err)
	}
	return body, nil
}

// Close releases pooled connections. Invoked by the factory's Release.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
