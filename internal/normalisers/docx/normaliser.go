// Package docx extracts paragraph text from WordprocessingML documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	// DefaultMaxParagraphs bounds how many paragraphs are read.
	DefaultMaxParagraphs = 200

	// DefaultMaxWords bounds how many words are extracted in total.
	DefaultMaxWords = 2000

	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Normaliser handles DOCX documents.
type Normaliser struct {
	maxParagraphs int
	maxWords      int
}

// Option configures the DOCX normaliser.
type Option func(*Normaliser)

// WithMaxParagraphs sets the paragraph cap. Values <= 0 disable it.
func WithMaxParagraphs(n int) Option {
	return func(d *Normaliser) {
		d.maxParagraphs = n
	}
}

// WithMaxWords sets the word cap. Values <= 0 disable it.
func WithMaxWords(n int) Option {
	return func(d *Normaliser) {
		d.maxWords = n
	}
}

// New creates a new DOCX normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{
		maxParagraphs: DefaultMaxParagraphs,
		maxWords:      DefaultMaxWords,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{domain.DeclaredTypeDOCX.MIMEType()}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts paragraph text from the document part of the archive.
// Content that is not a readable DOCX archive yields domain.ErrInvalidInput.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %v", domain.ErrInvalidInput, err)
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	paragraphs, err := parseParagraphs(body)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed document part: %v", domain.ErrInvalidInput, err)
	}

	content, truncated := n.limit(paragraphs)

	doc := domain.Document{
		ID:        uuid.New().String(),
		URI:       raw.URI,
		Title:     extractTitle(reader, raw.URI),
		Content:   content,
		Metadata:  copyMetadata(raw.Metadata),
		CreatedAt: time.Now(),
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.ResolvedMIMEType()
	doc.Metadata["format"] = "docx"
	doc.Metadata["paragraphs"] = len(paragraphs)
	if truncated {
		doc.Metadata["truncated"] = true
	}

	return &driven.NormaliseResult{Document: doc}, nil
}

// limit joins non-empty paragraphs until either cap is reached.
func (n *Normaliser) limit(paragraphs []string) (string, bool) {
	var (
		kept  []string
		words int
	)
	for i, p := range paragraphs {
		if n.maxParagraphs > 0 && i >= n.maxParagraphs {
			return strings.Join(kept, "\n"), true
		}
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fields := strings.Fields(p)
		if n.maxWords > 0 && words+len(fields) > n.maxWords {
			if remaining := n.maxWords - words; remaining > 0 {
				kept = append(kept, strings.Join(fields[:remaining], " "))
			}
			return strings.Join(kept, "\n"), true
		}
		words += len(fields)
		kept = append(kept, p)
	}
	return strings.Join(kept, "\n"), false
}

// readPart returns the bytes of a named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("missing %s", name)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
	Tabs []struct{}    `xml:"tab"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseParagraphs returns the text of each body paragraph in order.
func parseParagraphs(content []byte) ([]string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	paragraphs := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		var b strings.Builder
		for _, r := range para.Runs {
			if len(r.Tabs) > 0 {
				b.WriteByte(' ')
			}
			for _, text := range r.Text {
				b.WriteString(text.Content)
			}
		}
		paragraphs = append(paragraphs, b.String())
	}
	return paragraphs, nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from the core properties or falls back to the file name.
func extractTitle(reader *zip.Reader, uri string) string {
	if content, err := readPart(reader, corePart); err == nil {
		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil {
			if title := strings.TrimSpace(core.Title); title != "" {
				return title
			}
		}
	}

	name := strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
