package dropbox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// contentCall performs one content-endpoint request. Request metadata
// travels in the Dropbox-API-Arg header; the body carries raw bytes.
// When out is non-nil the response body is handed to the caller instead
// of being drained.
func (c *Client) contentCall(ctx context.Context, path, apiArg string, body io.Reader, out *io.ReadCloser) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contentURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Dropbox-API-Arg", apiArg)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dropbox %s request: %w", path, err)
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out != nil {
		*out = resp.Body
		return nil
	}

	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type HTTPStatusError struct {
	Path       string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "dropbox status error"
	}
	if e.Body == "" {
		return fmt.Sprintf("dropbox %s status: %s", e.Path, e.Status)
	}
	return fmt.Sprintf("dropbox %s status: %s: %s", e.Path, e.Status, e.Body)
}
