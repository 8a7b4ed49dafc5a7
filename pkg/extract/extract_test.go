package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsift/pkg/extract"
)

func TestExtractPlainText(t *testing.T) {
	e := extract.NewExtractor()

	tests := []struct {
		name string
		ext  string
	}{
		{name: "txt", ext: ".txt"},
		{name: "markdown", ext: ".md"},
		{name: "unknown extension", ext: ".log"},
		{name: "no extension", ext: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := e.Extract([]byte("  plain body text\n"), tt.ext)
			require.NoError(t, err)
			assert.Equal(t, "plain body text", text)
		})
	}
}

func TestExtractHTML(t *testing.T) {
	e := extract.NewExtractor()

	html := `
		<html>
			<head><title>Ignored</title><style>body { color: red }</style></head>
			<body>
				<nav>Navigation noise</nav>
				<main>
					<h1>Quarterly Report</h1>
					<p>Revenue grew in the second quarter.</p>
				</main>
				<footer>Footer noise</footer>
			</body>
		</html>`

	text, err := e.Extract([]byte(html), ".html")
	require.NoError(t, err)
	assert.Contains(t, text, "Quarterly Report")
	assert.Contains(t, text, "Revenue grew in the second quarter.")
	assert.NotContains(t, text, "Navigation noise")
	assert.NotContains(t, text, "color: red")
}

func TestExtractHTMLFallsBackToBody(t *testing.T) {
	e := extract.NewExtractor()

	text, err := e.Extract([]byte("<html><body><p>No main element here.</p></body></html>"), ".htm")
	require.NoError(t, err)
	assert.Contains(t, text, "No main element here.")
}

func TestExtractSanitizesInvalidUTF8(t *testing.T) {
	e := extract.NewExtractor()

	payload := append([]byte("valid "), 0xff, 0xfe)
	payload = append(payload, []byte(" text")...)

	text, err := e.Extract(payload, ".txt")
	require.NoError(t, err)
	assert.Equal(t, "valid  text", text)
}

func TestExtractEmptyPayload(t *testing.T) {
	e := extract.NewExtractor()

	_, err := e.Extract(nil, ".txt")
	assert.Error(t, err)
}

func TestExtractMalformedPDF(t *testing.T) {
	e := extract.NewExtractor()

	_, err := e.Extract([]byte("not a pdf at all"), ".pdf")
	assert.Error(t, err)
}
