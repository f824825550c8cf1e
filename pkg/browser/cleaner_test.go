package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractReadableBasic(t *testing.T) {
	raw := `<!DOCTYPE html>
<html>
<head>
	<title>Benefits Portal</title>
	<meta name="description" content="Apply for benefits online">
	<style>body { color: red; }</style>
	<script>console.log("tracking");</script>
</head>
<body>
	<h1>Welcome</h1>
	<p>Apply for your benefits here.</p>
	<script>evil()</script>
</body>
</html>`

	content, err := ExtractReadable(raw, 0)
	require.NoError(t, err)

	assert.Equal(t, "Benefits Portal", content.Title)
	assert.Equal(t, "Apply for benefits online", content.Description)
	assert.Contains(t, content.Text, "Welcome")
	assert.Contains(t, content.Text, "Apply for your benefits here.")
	assert.NotContains(t, content.Text, "tracking")
	assert.NotContains(t, content.Text, "evil")
	assert.NotContains(t, content.Text, "color: red")
	assert.False(t, content.Truncated)
}

func TestExtractReadableBlockBreaks(t *testing.T) {
	raw := `<html><body><p>First paragraph.</p><p>Second paragraph.</p></body></html>`

	content, err := ExtractReadable(raw, 0)
	require.NoError(t, err)

	lines := strings.Split(content.Text, "\n")
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(l))
		}
	}
	assert.Contains(t, nonEmpty, "First paragraph.")
	assert.Contains(t, nonEmpty, "Second paragraph.")
}

func TestExtractReadableTruncation(t *testing.T) {
	long := strings.Repeat("word ", 200)
	raw := "<html><body><p>" + long + "</p></body></html>"

	content, err := ExtractReadable(raw, 50)
	require.NoError(t, err)

	assert.True(t, content.Truncated)
	assert.True(t, strings.HasSuffix(content.Text, "..."))
	assert.LessOrEqual(t, len(content.Text), 60)
}

func TestExtractReadableCollapsesWhitespace(t *testing.T) {
	raw := "<html><body><p>spaced    out\n\n\ttext</p></body></html>"

	content, err := ExtractReadable(raw, 0)
	require.NoError(t, err)

	assert.Contains(t, content.Text, "spaced out text")
}

func TestExtractReadableNoTitle(t *testing.T) {
	content, err := ExtractReadable("<html><body><p>hello</p></body></html>", 0)
	require.NoError(t, err)

	assert.Empty(t, content.Title)
	assert.Empty(t, content.Description)
	assert.Contains(t, content.Text, "hello")
}
