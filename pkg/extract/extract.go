// Package extract provides plain-text extraction from uploaded payloads.
package extract

import (
	"fmt"
	"strings"
)

// Extractor extracts plain text from uploaded document payloads.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text content of the payload. ext selects the format and
// should include the leading dot (e.g. ".pdf"). PDF and HTML payloads are
// parsed; plain-text formats are returned as-is after UTF-8 sanitization.
// Unknown extensions are treated as plain text.
func (e *Extractor) Extract(content []byte, ext string) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty payload")
	}
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".html", ".htm":
		return extractHTML(content)
	default:
		return extractPlain(content)
	}
}
