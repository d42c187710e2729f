package domain

import (
	"strings"
	"time"
)

// Document represents one policy document after text extraction.
// It exists only for the lifetime of a single analysis request.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path, tool input, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the canonical text after normalisation.
	// It is never modified once the document has been built.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was built.
	CreatedAt time.Time
}

// WordCount returns the number of whitespace-separated words in the content.
func (d *Document) WordCount() int {
	return CountWords(d.Content)
}

// Chunk is a bounded segment of a document's canonical text.
// Chunks are views: their content is always a substring of Document.Content.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// WordCount is the number of words in Content.
	WordCount int
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
