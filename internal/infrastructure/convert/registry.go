package convert

import (
	"io"
)

// Converter turns one document body into plain text.
type Converter interface {
	Convert(r io.Reader) (string, error)
}

// Registry maps content types to converters. Types without an entry are
// treated as having no extractable text.
type Registry struct {
	byType map[string]Converter
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]Converter)}
}

func (r *Registry) Register(contentType string, c Converter) {
	r.byType[contentType] = c
}

func (r *Registry) For(contentType string) (Converter, bool) {
	c, ok := r.byType[contentType]
	return c, ok
}

// DefaultRegistry wires the full converter set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypePlainText, PlainText{})
	r.Register(TypeCSV, CSV{})
	r.Register(TypeHTML, HTML{})
	r.Register(TypeRTF, RTF{})
	r.Register("text/rtf", RTF{})
	r.Register(TypePDF, PDF{})
	r.Register(TypeDOCX, DOCX{})
	r.Register(TypeXLSX, XLSX{})
	return r
}

const (
	TypePlainText = "text/plain"
	TypeCSV       = "text/csv"
	TypeHTML      = "text/html"
	TypeRTF       = "application/rtf"
	TypePDF       = "application/pdf"
	TypeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
