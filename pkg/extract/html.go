package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Main-content selectors tried in order before falling back to body text.
var contentSelectors = []string{
	"main",
	"article",
	".content",
	"#content",
	".documentation",
	"#documentation",
}

func extractHTML(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer").Remove()

	var text string
	for _, selector := range contentSelectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			text = selected.Text()
			break
		}
	}
	if text == "" {
		text = doc.Find("body").Text()
	}

	// Collapse runs of whitespace left behind by markup.
	text = strings.Join(strings.Fields(text), " ")
	return sanitizeUTF8(text), nil
}
