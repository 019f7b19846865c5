package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rebelsai/docusight/internal/infrastructure/resilience"
)

// Client talks to the model-serving sidecar over its JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

type ClientOptions struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

func NewClient(baseURL string, options ClientOptions) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.Executor,
	}
}

type loadRequest struct {
	Model  string `json:"model"`
	Device string `json:"device"`
}

type loadResponse struct {
	Model  string `json:"model"`
	Device string `json:"device"`
}

type classifyRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type classifyResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Error string  `json:"error,omitempty"`
}

type classifyResponse struct {
	Results []classifyResult `json:"results"`
}

// Load instructs the sidecar to load the model on the requested device
// and reports the device it actually resolved ("auto" becomes "cuda"
// when a GPU is present, "cpu" otherwise).
func (c *Client) Load(ctx context.Context, model, device string) (string, error) {
	var resp loadResponse
	err := c.call(ctx, "inference.load", "/api/load", loadRequest{Model: model, Device: device}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Device, nil
}

// Classify scores a batch of texts. The sidecar returns one result per
// input, in input order.
func (c *Client) Classify(ctx context.Context, model string, texts []string) ([]classifyResult, error) {
	var resp classifyResponse
	err := c.call(ctx, "inference.classify", "/api/classify", classifyRequest{Model: model, Texts: texts}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) call(ctx context.Context, name, path string, in, out any) error {
	do := func(ctx context.Context) error {
		return c.postJSON(ctx, path, in, out)
	}
	if c.executor != nil {
		return c.executor.Execute(ctx, name, do, classifyInferenceError)
	}
	return do(ctx)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference %s request: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

type statusError struct {
	Path       string
	StatusCode int
	Status     string
	Body       string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inference %s status: %s", e.Path, e.Status)
	}
	return fmt.Sprintf("inference %s status: %s: %s", e.Path, e.Status, e.Body)
}
