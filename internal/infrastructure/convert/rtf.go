package convert

import (
	"fmt"
	"io"
	"strings"
)

// RTF strips control words and group braces, keeping only literal text.
// Good enough for classification input; layout fidelity is not a goal.
type RTF struct{}

func (RTF) Convert(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read rtf: %w", err)
	}

	var sb strings.Builder
	data := string(raw)
	for i := 0; i < len(data); i++ {
		switch c := data[i]; c {
		case '{', '}':
			// group delimiters carry no text
		case '\\':
			i = consumeControl(data, i, &sb)
		case '\r', '\n':
			// raw newlines in RTF source are not document text
		default:
			sb.WriteByte(c)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// consumeControl advances past the control word or symbol starting at
// the backslash at position i and returns the index of its last byte.
func consumeControl(data string, i int, sb *strings.Builder) int {
	if i+1 >= len(data) {
		return i
	}
	next := data[i+1]

	// escaped literals
	switch next {
	case '\\', '{', '}':
		sb.WriteByte(next)
		return i + 1
	case '~':
		sb.WriteByte(' ')
		return i + 1
	}

	if !isAlpha(next) {
		// other control symbols (\', \-, \*) produce nothing useful here
		return i + 1
	}

	j := i + 1
	for j < len(data) && isAlpha(data[j]) {
		j++
	}
	word := data[i+1 : j]

	// numeric parameter
	for j < len(data) && (data[j] == '-' || isDigit(data[j])) {
		j++
	}
	// one space after a control word is a delimiter, not text
	if j < len(data) && data[j] == ' ' {
		j++
	}

	switch word {
	case "par", "line", "row":
		sb.WriteByte('\n')
	case "tab", "cell":
		sb.WriteByte('\t')
	}
	return j - 1
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
