package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/core/ports"
)

type ClassifyDocumentsUseCase struct {
	docs       ports.DocumentRepository
	folders    ports.FolderRepository
	results    ports.ClassificationRepository
	blobs      ports.BlobClientFactory
	classifier ports.TextClassifier
}

func NewClassifyDocumentsUseCase(
	docs ports.DocumentRepository,
	folders ports.FolderRepository,
	results ports.ClassificationRepository,
	blobs ports.BlobClientFactory,
	classifier ports.TextClassifier,
) *ClassifyDocumentsUseCase {
	return &ClassifyDocumentsUseCase{
		docs:       docs,
		folders:    folders,
		results:    results,
		blobs:      blobs,
		classifier: classifier,
	}
}

// ClassifyDocuments fetches stored text for each document, runs the
// classification model over the classifiable ones, and appends one
// classification row per successful item. Outcomes mirror the input
// order; documents without an uploaded text artifact are reported as
// skipped, never crashed on.
func (uc *ClassifyDocumentsUseCase) ClassifyDocuments(
	ctx context.Context,
	documentIDs []string,
) ([]domain.ClassifyOutcome, error) {
	outcomes := make([]domain.ClassifyOutcome, len(documentIDs))

	clients := make(map[string]ports.BlobClient)
	defer func() {
		for _, client := range clients {
			uc.blobs.Release(client)
		}
	}()

	var (
		texts   []string
		indexes []int
	)
	for i, id := range documentIDs {
		outcomes[i] = domain.ClassifyOutcome{DocumentID: id}

		doc, err := uc.docs.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch document %s: %w", id, err)
		}
		if !doc.Classifiable() {
			outcomes[i].Skipped = true
			outcomes[i].SkipReason = domain.SkipNoText
			continue
		}

		text, err := uc.fetchText(ctx, clients, doc)
		if err != nil {
			if domain.IsKind(err, domain.ErrAuthentication) {
				return nil, err
			}
			slog.Warn("document_text_unavailable", "document_id", id, "error", err)
			outcomes[i].Skipped = true
			outcomes[i].SkipReason = domain.SkipNoText
			continue
		}
		if strings.TrimSpace(text) == "" {
			outcomes[i].Skipped = true
			outcomes[i].SkipReason = domain.SkipEmptyText
			continue
		}

		texts = append(texts, text)
		indexes = append(indexes, i)
	}

	if len(texts) == 0 {
		return outcomes, nil
	}

	results, err := uc.classifier.ClassifyTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("classify texts: %w", err)
	}
	if len(results) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrInference,
			"classify texts",
			fmt.Errorf("results/texts mismatch: %d/%d", len(results), len(texts)),
		)
	}

	for n, result := range results {
		i := indexes[n]
		if result.Err != nil {
			slog.Warn("document_inference_failed", "document_id", outcomes[i].DocumentID, "error", result.Err)
			outcomes[i].Skipped = true
			outcomes[i].SkipReason = domain.SkipInferenceError
			continue
		}

		cls := &domain.Classification{
			ID:         uuid.NewString(),
			DocumentID: outcomes[i].DocumentID,
			Model:      uc.classifier.ModelName(),
			Label:      result.Prediction.Label,
			Score:      result.Prediction.Score,
			CreatedAt:  time.Now().UTC(),
		}
		if err := uc.results.Create(ctx, cls); err != nil {
			return nil, fmt.Errorf("save classification for %s: %w", cls.DocumentID, err)
		}
		outcomes[i].Label = cls.Label
		outcomes[i].Score = cls.Score
	}

	return outcomes, nil
}

// ClassifyFolder classifies every document of one scan run, in the
// folder's traversal order.
func (uc *ClassifyDocumentsUseCase) ClassifyFolder(
	ctx context.Context,
	folderID string,
) ([]domain.ClassifyOutcome, error) {
	if _, err := uc.folders.GetByID(ctx, folderID); err != nil {
		return nil, fmt.Errorf("fetch folder %s: %w", folderID, err)
	}

	docs, err := uc.docs.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list folder documents: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return uc.ClassifyDocuments(ctx, ids)
}

func (uc *ClassifyDocumentsUseCase) fetchText(
	ctx context.Context,
	clients map[string]ports.BlobClient,
	doc *domain.Document,
) (string, error) {
	client, ok := clients[doc.UserID]
	if !ok {
		var err error
		client, err = uc.blobs.ClientFor(ctx, doc.UserID)
		if err != nil {
			return "", fmt.Errorf("acquire blob client: %w", err)
		}
		clients[doc.UserID] = client
	}

	reader, err := client.Download(ctx, doc.BlobPath)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", doc.BlobPath, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", doc.BlobPath, err)
	}
	return string(raw), nil
}
