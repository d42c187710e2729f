// Package chunker splits canonical policy text into a few word windows that
// are each small enough for a single summarisation call.
package chunker

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 400

// DefaultChunkOverlap is the default number of words shared by adjacent chunks.
const DefaultChunkOverlap = 20

// DefaultMaxChunks bounds how many chunks a document produces.
const DefaultMaxChunks = 3

// Processor splits document content into word windows.
// Text before the first relevance keyword is skipped when the document is
// longer than one chunk.
type Processor struct {
	chunkSize int
	overlap   int
	maxChunks int
	keywords  []string
	relevance *regexp.Regexp
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMaxChunks sets the chunk cap. Non-positive values are ignored.
func WithMaxChunks(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChunks = n
		}
	}
}

// WithRelevanceKeywords replaces the relevance keyword list.
// An empty list disables leading-text skipping.
func WithRelevanceKeywords(keywords []string) Option {
	return func(p *Processor) {
		p.keywords = keywords
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		maxChunks: DefaultMaxChunks,
		keywords:  domain.DefaultRelevanceKeywords(),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	p.relevance = compileKeywords(p.keywords)

	return p
}

// compileKeywords builds one case-insensitive alternation. Nil means disabled.
func compileKeywords(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			quoted = append(quoted, regexp.QuoteMeta(kw))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	spans := p.split(doc.Content)
	if len(spans) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, s := range spans {
		content := doc.Content[s.start:s.end]
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    content,
			Position:   i,
			WordCount:  s.words,
		})
	}
	return chunks, nil
}

// span is a byte range of the source text holding a number of words.
type span struct {
	start, end int
	words      int
}

// split returns the chunk byte ranges of text in order.
func (p *Processor) split(text string) []span {
	words := wordOffsets(text, 0)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= p.chunkSize {
		return []span{{start: 0, end: len(text), words: len(words)}}
	}

	if p.relevance != nil {
		if loc := p.relevance.FindStringIndex(text); loc != nil && loc[0] > 0 {
			words = wordOffsets(text[loc[0]:], loc[0])
		}
	}

	step := p.chunkSize - p.overlap
	var spans []span
	for i := 0; i < len(words) && len(spans) < p.maxChunks; i += step {
		end := i + p.chunkSize
		if end > len(words) {
			end = len(words)
		}
		spans = append(spans, span{
			start: words[i].start,
			end:   words[end-1].end,
			words: end - i,
		})
	}
	return spans
}

// Texts returns the chunk contents of text in order.
func (p *Processor) Texts(text string) []string {
	spans := p.split(text)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = text[s.start:s.end]
	}
	return out
}

// wordOffsets returns the byte range of every whitespace separated word,
// shifted by base.
func wordOffsets(text string, base int) []span {
	var (
		words []span
		start = -1
	)
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, span{start: base + start, end: base + i, words: 1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, span{start: base + start, end: base + len(text), words: 1})
	}
	return words
}
