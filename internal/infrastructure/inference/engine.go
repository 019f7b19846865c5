package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rebelsai/docusight/internal/core/domain"
)

// Engine batches texts through the sidecar and maps raw model labels
// onto the domain's three-way sentiment. One inference runs at a time;
// the model is loaded once, on first use.
type Engine struct {
	client        *Client
	model         string
	device        string
	batchSize     int
	maxInputChars int

	gate   chan struct{}
	warmed bool
}

type EngineConfig struct {
	Model string
	// Device is "cpu", "cuda" or "auto"; resolved by the sidecar on load.
	Device        string
	BatchSize     int
	MaxInputChars int
}

const (
	defaultBatchSize     = 16
	defaultMaxInputChars = 2000
)

func NewEngine(client *Client, cfg EngineConfig) *Engine {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	maxInputChars := cfg.MaxInputChars
	if maxInputChars <= 0 {
		maxInputChars = defaultMaxInputChars
	}
	device := cfg.Device
	if device == "" {
		device = "auto"
	}
	return &Engine{
		client:        client,
		model:         cfg.Model,
		device:        device,
		batchSize:     batchSize,
		maxInputChars: maxInputChars,
		gate:          make(chan struct{}, 1),
	}
}

func (e *Engine) ModelName() string {
	return e.model
}

// ClassifyTexts returns one result per input, in input order. Batch
// transport failures degrade to per-item calls so one poisoned input
// cannot fail its whole batch.
func (e *Engine) ClassifyTexts(ctx context.Context, texts []string) ([]domain.PredictionResult, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	select {
	case e.gate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.gate }()

	if err := e.warmUp(ctx); err != nil {
		return nil, err
	}

	prepared := make([]string, len(texts))
	for i, text := range texts {
		prepared[i] = truncateHead(text, e.maxInputChars)
	}

	results := make([]domain.PredictionResult, len(texts))
	for start := 0; start < len(prepared); start += e.batchSize {
		end := min(start+e.batchSize, len(prepared))
		e.classifyBatch(ctx, prepared[start:end], results[start:end])
	}
	return results, nil
}

// warmUp loads the model once. Failures leave the engine cold so the
// next call retries the load.
func (e *Engine) warmUp(ctx context.Context) error {
	if e.warmed {
		return nil
	}
	resolved, err := e.client.Load(ctx, e.model, e.device)
	if err != nil {
		return domain.WrapError(domain.ErrInference, "load model", err)
	}
	if resolved != "" {
		e.device = resolved
	}
	e.warmed = true
	slog.Info("model_loaded",
		slog.String("model", e.model),
		slog.String("device", e.device),
	)
	return nil
}

func (e *Engine) classifyBatch(ctx context.Context, texts []string, out []domain.PredictionResult) {
	raw, err := e.client.Classify(ctx, e.model, texts)
	if err == nil && len(raw) == len(texts) {
		for i, r := range raw {
			out[i] = toPrediction(r)
		}
		return
	}
	if err == nil {
		err = fmt.Errorf("sidecar returned %d results for %d texts", len(raw), len(texts))
	}
	slog.Warn("inference_batch_failed",
		slog.Int("batch_size", len(texts)),
		slog.String("error", err.Error()),
	)

	// degrade to per-item calls
	for i, text := range texts {
		single, itemErr := e.client.Classify(ctx, e.model, []string{text})
		if itemErr != nil {
			out[i] = domain.PredictionResult{Err: domain.WrapError(domain.ErrInference, "classify text", itemErr)}
			continue
		}
		if len(single) != 1 {
			out[i] = domain.PredictionResult{Err: domain.WrapError(domain.ErrInference, "classify text", fmt.Errorf("sidecar returned %d results for one text", len(single)))}
			continue
		}
		out[i] = toPrediction(single[0])
	}
}

func toPrediction(r classifyResult) domain.PredictionResult {
	if r.Error != "" {
		return domain.PredictionResult{Err: domain.WrapError(domain.ErrInference, "classify text", fmt.Errorf("%s", r.Error))}
	}
	label, err := normalizeLabel(r.Label)
	if err != nil {
		return domain.PredictionResult{Err: domain.WrapError(domain.ErrInference, "classify text", err)}
	}
	return domain.PredictionResult{Prediction: domain.Prediction{Label: label, Score: r.Score}}
}

// normalizeLabel folds the model's raw output onto the three-way
// sentiment. Star-rating models emit "1 star" .. "5 stars".
func normalizeLabel(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positive", "pos", "label_2", "4 stars", "5 stars":
		return domain.LabelPositive, nil
	case "neutral", "neu", "label_1", "3 stars":
		return domain.LabelNeutral, nil
	case "negative", "neg", "label_0", "1 star", "2 stars":
		return domain.LabelNegative, nil
	default:
		return "", fmt.Errorf("unrecognized label %q", raw)
	}
}

// truncateHead keeps the first max runes so truncation never splits a
// multi-byte character.
func truncateHead(s string, max int) string {
	if max <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
