package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Quarterly Results Announced</title>
  <style>p { color: red; }</style>
  <script>var tracking = "noise";</script>
</head>
<body>
  <h1>Quarterly Results</h1>
  <p>Revenue grew 15% year over year.</p>
  <div><p>Margins   remained
  stable.</p></div>
  <script>console.log("more noise")</script>
</body>
</html>`

func TestExtractReadableText(t *testing.T) {
	title, content := extractReadableText([]byte(samplePage))

	assert.Equal(t, "Quarterly Results Announced", title)
	assert.Contains(t, content, "Quarterly Results")
	assert.Contains(t, content, "Revenue grew 15% year over year.")
	assert.Contains(t, content, "Margins remained stable.")
	assert.NotContains(t, content, "noise")
	assert.NotContains(t, content, "color: red")
}

func TestExtractReadableTextInvalidInput(t *testing.T) {
	title, content := extractReadableText([]byte("plain text, no markup"))
	assert.Empty(t, title)
	// html.Parse wraps bare text in a body; nothing matches the block tags
	assert.NotContains(t, content, "<")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "abcdef", truncateRunes("abcdef", 10))
	assert.Equal(t, "abcdef", truncateRunes("abcdef", 0))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
}
