package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

func rawHTML(uri, content string) *domain.RawDocument {
	return &domain.RawDocument{
		URI:          uri,
		DeclaredType: domain.DeclaredTypeHTML,
		Content:      []byte(content),
	}
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.ElementsMatch(t, []string{"text/html", "application/xhtml+xml"}, mimeTypes)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := rawHTML("/path/to/policy.html",
		"<html><head><title>Auto Policy</title></head><body><p>Coverage applies.</p></body></html>")

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "Auto Policy", doc.Title)
	assert.Equal(t, "Coverage applies.", doc.Content)
	assert.Equal(t, "text/html", doc.Metadata["mime_type"])
	assert.Equal(t, "html", doc.Metadata["format"])
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_EmptyContent(t *testing.T) {
	result, err := New().Normalise(context.Background(), rawHTML("/empty.html", ""))
	require.NoError(t, err)
	assert.Empty(t, result.Document.Content)
}

func TestNormalise_TitleExtraction(t *testing.T) {
	tests := []struct {
		name    string
		content string
		uri     string
		want    string
	}{
		{"title tag", "<title>Home Policy</title><body></body>", "/doc.html", "Home Policy"},
		{"title with spaces", "<title>   Spaced   </title>", "/doc.html", "Spaced"},
		{"title with entities", "<title>Smith &amp; Sons</title>", "/doc.html", "Smith & Sons"},
		{"no title", "<body>Just content</body>", "/travel_policy.html", "travel policy"},
		{"empty title", "<title></title><body>Content</body>", "/schedule.htm", "schedule"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := New().Normalise(context.Background(), rawHTML(tc.uri, tc.content))
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Document.Title)
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"paragraph", "<p>Premium due</p>", "Premium due"},
		{"nested tags", "<div><p><strong>Deductible</strong> applies</p></div>", "Deductible applies"},
		{"script removed", "<p>Before</p><script>track();</script><p>After</p>", "Before\nAfter"},
		{"style removed", "<style>.x { color: red; }</style><p>Content</p>", "Content"},
		{"noscript removed", "<p>Content</p><noscript>fallback</noscript>", "Content"},
		{"head removed", "<head><meta charset='utf-8'><title>T</title></head><body>Body</body>", "Body"},
		{"br to newline", "Line 1<br>Line 2<br/>Line 3", "Line 1\nLine 2\nLine 3"},
		{"entities decoded", "<p>Limit &gt; $1,000 &amp; more</p>", "Limit > $1,000 & more"},
		{"non-breaking spaces", "<p>Policy&nbsp;&nbsp;Number</p>", "Policy Number"},
		{"comments removed", "<p>Before</p><!-- hidden --><p>After</p>", "Before\nAfter"},
		{"list items", "<ul><li>Fire</li><li>Theft</li></ul>", "Fire\nTheft"},
		{"headings", "<h1>Coverage</h1><h2>Exclusions</h2><p>Flood</p>", "Coverage\nExclusions\nFlood"},
		{"link text kept", `<a href="https://example.com">Claims portal</a>`, "Claims portal"},
		{"image removed", `<p>See <img src="x.png"> here</p>`, "See here"},
		{"svg removed", `<p>A</p><svg><circle cx="5"/></svg><p>B</p>`, "A\nB"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripHTML(tc.input))
		})
	}
}

func TestNormalise_PolicyPage(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head>
    <title>Named Insured Schedule</title>
    <style>body { font-family: Arial; }</style>
</head>
<body>
    <h1>Declarations</h1>
    <p>Policy Number: <strong>POL-2024-9981</strong></p>
    <table><tr><td>Premium</td><td>$1,200.00</td></tr></table>
    <script>console.log('x');</script>
    <footer><p>&copy; 2024 Acme Insurance Inc</p></footer>
</body>
</html>`

	result, err := New().Normalise(context.Background(), rawHTML("/declarations.html", page))
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Named Insured Schedule", doc.Title)
	assert.Contains(t, doc.Content, "Policy Number: POL-2024-9981")
	assert.Contains(t, doc.Content, "$1,200.00")
	assert.Contains(t, doc.Content, "2024 Acme Insurance Inc")
	assert.NotContains(t, doc.Content, "console.log")
	assert.NotContains(t, doc.Content, "font-family")
	assert.NotContains(t, doc.Content, "<")
}

func TestNormalise_MetadataPreserved(t *testing.T) {
	raw := rawHTML("/doc.html", "<body>Test</body>")
	raw.Metadata = map[string]any{"source": "upload"}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "upload", result.Document.Metadata["source"])
	assert.Equal(t, "html", result.Document.Metadata["format"])
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func BenchmarkStripHTML(b *testing.B) {
	content := `<html><head><title>T</title><style>body{}</style></head>
<body><h1>Coverage</h1><p>Limit <strong>$50,000</strong>.</p><script>x();</script></body></html>`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = stripHTML(content)
	}
}
