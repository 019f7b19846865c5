package domain

import "time"

// ScanEntry is one file discovered during a folder scan, reported in
// traversal order. Entries without a supported converter carry metadata
// only (HasText false); entries whose conversion failed carry the
// per-item error and still do not abort the scan.
type ScanEntry struct {
	RelPath      string
	Size         int64
	FileCreated  time.Time
	FileModified time.Time
	ContentType  string
	Text         string
	HasText      bool
	ConvertError string
}

// ScanPolicy filters the traversal at the call boundary.
type ScanPolicy struct {
	// IncludeHidden keeps dotfiles and dot-directories in the scan.
	IncludeHidden bool `yaml:"include_hidden"`
	// IgnorePatterns are path.Match globs applied to base names.
	IgnorePatterns []string `yaml:"ignore_patterns"`
}
