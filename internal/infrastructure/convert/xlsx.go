package convert

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSX flattens every sheet into tab-separated rows, sheets separated
// by a blank line.
type XLSX struct{}

func (XLSX) Convert(r io.Reader) (string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	var sb strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		for i, row := range rows {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(strings.Join(row, "\t"))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
