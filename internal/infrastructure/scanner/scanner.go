package scanner

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rebelsai/docusight/internal/core/domain"
	"github.com/rebelsai/docusight/internal/infrastructure/convert"
)

// FSScanner walks a directory tree (or a zip archive) and yields one
// entry per regular file, with text already converted where a converter
// exists for the detected content type.
type FSScanner struct {
	converters *convert.Registry
}

func NewFSScanner(converters *convert.Registry) *FSScanner {
	return &FSScanner{converters: converters}
}

// Scan validates the root eagerly and returns a lazy entry sequence.
// An unreadable or corrupt root fails here, never as a silent empty
// sequence. The sequence can be iterated more than once; each pass
// re-walks the tree. Entries come out in lexical walk order.
func (s *FSScanner) Scan(ctx context.Context, root string, policy domain.ScanPolicy) (iter.Seq[domain.ScanEntry], error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.WrapError(domain.ErrScan, "stat scan root", err)
	}

	if info.Mode().IsRegular() && strings.EqualFold(filepath.Ext(root), ".zip") {
		probe, err := zip.OpenReader(root)
		if err != nil {
			return nil, domain.WrapError(domain.ErrScan, "open archive", err)
		}
		probe.Close()
		return s.scanArchive(ctx, root, policy), nil
	}
	if !info.IsDir() {
		return nil, domain.WrapError(domain.ErrScan, "stat scan root", fmt.Errorf("%s is neither a directory nor a zip archive", root))
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, domain.WrapError(domain.ErrScan, "read scan root", err)
	}
	return s.scanDir(ctx, root, policy), nil
}

func (s *FSScanner) scanDir(ctx context.Context, root string, policy domain.ScanPolicy) iter.Seq[domain.ScanEntry] {
	return func(yield func(domain.ScanEntry) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return filepath.SkipAll
			}
			if err != nil {
				slogWalkError(path, err)
				return nil
			}

			name := d.Name()
			if path != root && !policy.IncludeHidden && strings.HasPrefix(name, ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesIgnore(policy.IgnorePatterns, name) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				// symlinks and special files are never followed
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = name
			}
			entry := s.buildEntry(path, filepath.ToSlash(rel), d)
			if !yield(entry) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (s *FSScanner) buildEntry(path, relPath string, d fs.DirEntry) domain.ScanEntry {
	entry := domain.ScanEntry{RelPath: relPath}

	info, err := d.Info()
	if err == nil {
		entry.Size = info.Size()
		entry.FileModified = info.ModTime().UTC()
		entry.FileCreated = info.ModTime().UTC()
	}

	contentType, sniffErr := s.detectContentType(path)
	entry.ContentType = contentType
	if sniffErr != nil {
		entry.ConvertError = sniffErr.Error()
		return entry
	}

	converter, ok := s.converters.For(contentType)
	if !ok {
		// no converter registered: a valid entry with no text
		return entry
	}

	file, err := os.Open(path)
	if err != nil {
		entry.ConvertError = domain.WrapError(domain.ErrConversion, "open file", err).Error()
		return entry
	}
	defer file.Close()

	text, err := converter.Convert(file)
	if err != nil {
		entry.ConvertError = domain.WrapError(domain.ErrConversion, "convert file", err).Error()
		return entry
	}
	entry.Text = text
	entry.HasText = true
	return entry
}

// detectContentType prefers the extension; unknown extensions fall back
// to sniffing the first 512 bytes.
func (s *FSScanner) detectContentType(path string) (string, error) {
	if t, ok := typeByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return t, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "application/octet-stream", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "application/octet-stream", fmt.Errorf("read file head: %w", err)
	}

	sniffed := http.DetectContentType(head[:n])
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return strings.TrimSpace(sniffed), nil
}

var typeByExtension = map[string]string{
	".txt":  convert.TypePlainText,
	".text": convert.TypePlainText,
	".log":  convert.TypePlainText,
	".md":   convert.TypePlainText,
	".csv":  convert.TypeCSV,
	".html": convert.TypeHTML,
	".htm":  convert.TypeHTML,
	".rtf":  convert.TypeRTF,
	".pdf":  convert.TypePDF,
	".docx": convert.TypeDOCX,
	".xlsx": convert.TypeXLSX,
}

func matchesIgnore(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
