package convert

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// PlainText passes the body through, replacing invalid UTF-8 so the
// result is always storable as text.
type PlainText struct{}

func (PlainText) Convert(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	return strings.ToValidUTF8(string(raw), "�"), nil
}
