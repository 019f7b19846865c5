package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rebelsai/docusight/internal/core/domain"
)

func textEntry(relPath, text string) domain.ScanEntry {
	return domain.ScanEntry{
		RelPath:     relPath,
		ContentType: "text/plain",
		Text:        text,
		HasText:     true,
	}
}

func TestIngestCountsAndTraversalOrder(t *testing.T) {
	folders := &folderRepoFake{}
	docs := &docRepoFake{}
	scanner := &scannerFake{entries: []domain.ScanEntry{
		textEntry("a.txt", "alpha"),
		{RelPath: "b.bin", ContentType: "application/octet-stream"},
		{RelPath: "c.pdf", ContentType: "application/pdf", ConvertError: "parse pdf: truncated"},
		textEntry("sub/d.txt", "delta"),
	}}
	client := &blobClientFake{}
	blobs := &blobFactoryFake{client: client}
	queue := &queueFake{}
	uc := NewIngestFolderUseCase(folders, docs, scanner, blobs, queue)

	summary, err := uc.Ingest(context.Background(), "user-1", "/data/reviews", domain.ScanPolicy{})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if summary.Scanned != 4 || summary.Uploaded != 2 || summary.NoText != 1 || summary.ConvertFailed != 1 || summary.UploadFailed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if folders.created == nil || folders.created.Name != "reviews" {
		t.Fatalf("expected folder named reviews, got %+v", folders.created)
	}
	if !folders.countCalled || folders.counted != 4 {
		t.Fatalf("expected document count 4, got %d", folders.counted)
	}
	if queue.folderID != summary.FolderID {
		t.Fatalf("expected published folder id %s, got %s", summary.FolderID, queue.folderID)
	}

	if len(docs.created) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(docs.created))
	}
	order := []string{"a.txt", "b.bin", "c.pdf", "sub/d.txt"}
	for i, rel := range order {
		if docs.created[i].RelPath != rel {
			t.Fatalf("expected document %d to be %s, got %s", i, rel, docs.created[i].RelPath)
		}
	}

	if len(client.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(client.uploads))
	}
	wantPath := BlobPathFor(summary.FolderID, docs.created[0].ID)
	if client.uploads[wantPath] != "alpha" {
		t.Fatalf("expected upload %q at %s, got %q", "alpha", wantPath, client.uploads[wantPath])
	}
	if blobs.acquired != 1 {
		t.Fatalf("expected one blob client acquisition, got %d", blobs.acquired)
	}
	if blobs.released != 1 {
		t.Fatalf("expected one blob client release, got %d", blobs.released)
	}
}

func TestIngestBlankConvertedTextIsNoText(t *testing.T) {
	folders := &folderRepoFake{}
	docs := &docRepoFake{}
	scanner := &scannerFake{entries: []domain.ScanEntry{
		textEntry("empty.txt", ""),
		textEntry("blank.txt", "  \n\t"),
		textEntry("a.txt", "alpha"),
	}}
	client := &blobClientFake{}
	blobs := &blobFactoryFake{client: client}
	uc := NewIngestFolderUseCase(folders, docs, scanner, blobs, &queueFake{})

	summary, err := uc.Ingest(context.Background(), "user-1", "/data/reviews", domain.ScanPolicy{})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if summary.Scanned != 3 || summary.NoText != 2 || summary.Uploaded != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(client.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(client.uploads))
	}
}

func TestIngestUploadFailureCountedNotFatal(t *testing.T) {
	folders := &folderRepoFake{}
	docs := &docRepoFake{}
	scanner := &scannerFake{entries: []domain.ScanEntry{
		textEntry("a.txt", "alpha"),
		textEntry("b.txt", "beta"),
	}}
	client := &blobClientFake{uploadErr: domain.WrapError(domain.ErrUpload, "upload", errors.New("provider 503"))}
	blobs := &blobFactoryFake{client: client}
	uc := NewIngestFolderUseCase(folders, docs, scanner, blobs, &queueFake{})

	summary, err := uc.Ingest(context.Background(), "user-1", "/data/reviews", domain.ScanPolicy{})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if summary.Scanned != 2 || summary.UploadFailed != 2 || summary.Uploaded != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestIngestAuthenticationFailureAborts(t *testing.T) {
	folders := &folderRepoFake{}
	docs := &docRepoFake{}
	scanner := &scannerFake{entries: []domain.ScanEntry{textEntry("a.txt", "alpha")}}
	client := &blobClientFake{uploadErr: domain.WrapError(domain.ErrAuthentication, "upload", errors.New("401"))}
	blobs := &blobFactoryFake{client: client}
	uc := NewIngestFolderUseCase(folders, docs, scanner, blobs, &queueFake{})

	_, err := uc.Ingest(context.Background(), "user-1", "/data/reviews", domain.ScanPolicy{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if blobs.released != 1 {
		t.Fatalf("expected blob client release on abort, got %d", blobs.released)
	}
}

func TestIngestRejectsEmptyInput(t *testing.T) {
	uc := NewIngestFolderUseCase(&folderRepoFake{}, &docRepoFake{}, &scannerFake{}, &blobFactoryFake{}, &queueFake{})

	_, err := uc.Ingest(context.Background(), "", "/data/reviews", domain.ScanPolicy{})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, err = uc.Ingest(context.Background(), "user-1", "  ", domain.ScanPolicy{})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngestScanErrorCreatesNoFolder(t *testing.T) {
	folders := &folderRepoFake{}
	scanner := &scannerFake{err: domain.WrapError(domain.ErrScan, "stat scan root", errors.New("no such directory"))}
	uc := NewIngestFolderUseCase(folders, &docRepoFake{}, scanner, &blobFactoryFake{}, &queueFake{})

	_, err := uc.Ingest(context.Background(), "user-1", "/missing", domain.ScanPolicy{})
	if !domain.IsKind(err, domain.ErrScan) {
		t.Fatalf("expected ErrScan, got %v", err)
	}
	if folders.created != nil {
		t.Fatalf("expected no folder row on scan failure")
	}
}

func TestIngestPublishFailureStillSucceeds(t *testing.T) {
	folders := &folderRepoFake{}
	docs := &docRepoFake{}
	scanner := &scannerFake{entries: []domain.ScanEntry{textEntry("a.txt", "alpha")}}
	blobs := &blobFactoryFake{client: &blobClientFake{}}
	queue := &queueFake{err: errors.New("nats down")}
	uc := NewIngestFolderUseCase(folders, docs, scanner, blobs, queue)

	summary, err := uc.Ingest(context.Background(), "user-1", "/data/reviews", domain.ScanPolicy{})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if summary.Uploaded != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestBlobPathForShape(t *testing.T) {
	path := BlobPathFor("folder-1", "doc-1")
	if !strings.HasPrefix(path, "/folders/folder-1/") || !strings.HasSuffix(path, "/doc-1.txt") {
		t.Fatalf("unexpected blob path %s", path)
	}
}
