package scanner

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rebelsai/docusight/internal/core/domain"
)

// scanArchive extracts the zip into a temp directory and walks that.
// Extraction happens per iteration pass so the sequence stays
// restartable; the temp tree is removed when the pass ends.
func (s *FSScanner) scanArchive(ctx context.Context, archivePath string, policy domain.ScanPolicy) iter.Seq[domain.ScanEntry] {
	return func(yield func(domain.ScanEntry) bool) {
		dir, err := extractZip(archivePath)
		if err != nil {
			slog.Error("archive_extract_failed",
				slog.String("archive", archivePath),
				slog.String("error", err.Error()),
			)
			return
		}
		defer os.RemoveAll(dir)

		for entry := range s.scanDir(ctx, dir, policy) {
			if !yield(entry) {
				return
			}
		}
	}
}

func extractZip(archivePath string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	dir, err := os.MkdirTemp("", "docusight-scan-*")
	if err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}

	for _, file := range reader.File {
		if err := extractZipEntry(dir, file); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

func extractZipEntry(dir string, file *zip.File) error {
	if !filepath.IsLocal(filepath.FromSlash(file.Name)) {
		return fmt.Errorf("archive entry %q escapes extraction dir", file.Name)
	}
	target := filepath.Join(dir, filepath.FromSlash(file.Name))

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create archive dir %s: %w", file.Name, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create archive dir for %s: %w", file.Name, err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", file.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create extracted file %s: %w", file.Name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extract %s: %w", file.Name, err)
	}

	if mod := file.Modified; !mod.IsZero() {
		_ = os.Chtimes(target, mod, mod)
	}
	return nil
}

func slogWalkError(path string, err error) {
	slog.Warn("scan_walk_error",
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
}
