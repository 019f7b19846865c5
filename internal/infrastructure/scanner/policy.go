package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rebelsai/docusight/internal/core/domain"
)

// LoadPolicy reads a scan policy file. An empty path or a missing file
// yields the default policy: hidden files skipped, nothing ignored.
func LoadPolicy(path string) (domain.ScanPolicy, error) {
	var policy domain.ScanPolicy
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return policy, nil
		}
		return policy, fmt.Errorf("read scan policy: %w", err)
	}

	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return policy, fmt.Errorf("parse scan policy: %w", err)
	}
	return policy, nil
}
