package domain

// IngestSummary is the structured result of one ingest run. Per-item
// failures are counted here, never raised past the operation boundary.
type IngestSummary struct {
	FolderID      string `json:"folder_id"`
	Scanned       int    `json:"scanned"`
	Uploaded      int    `json:"uploaded"`
	NoText        int    `json:"no_text"`
	UploadFailed  int    `json:"upload_failed"`
	ConvertFailed int    `json:"convert_failed"`
}

// Prediction is a single model output for one input text.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// PredictionResult pairs a prediction with a per-item inference error.
// Exactly one of the two is meaningful.
type PredictionResult struct {
	Prediction Prediction
	Err        error
}

// Skip reasons surfaced in classification outcomes.
const (
	SkipNoText         = "no text"
	SkipEmptyText      = "empty text"
	SkipInferenceError = "inference error"
)

// ClassifyOutcome is the per-document result of a classification run,
// returned in the same order as the requested document IDs.
type ClassifyOutcome struct {
	DocumentID string  `json:"document_id"`
	Label      string  `json:"label,omitempty"`
	Score      float64 `json:"score,omitempty"`
	Skipped    bool    `json:"skipped"`
	SkipReason string  `json:"skip_reason,omitempty"`
}
