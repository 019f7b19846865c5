package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSV flattens records into tab-separated lines.
type CSV struct{}

func (CSV) Convert(r io.Reader) (string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var sb strings.Builder
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read csv record: %w", err)
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(record, "\t"))
	}
	return sb.String(), nil
}
