// Package sections finds named policy clause headings in canonical text and
// slices the content between them.
package sections

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.SectionDetector = (*Detector)(nil)

const (
	// DefaultMaxContent is the content ceiling in characters.
	DefaultMaxContent = 3000

	// DefaultMinWords is the fewest words a section may hold; sections must exceed it.
	DefaultMinWords = 5

	// DefaultMinInputLength is the shortest text scanned at all.
	DefaultMinInputLength = 100

	truncationMarker = "..."
)

var dashFolder = strings.NewReplacer("—", "-", "–", "-", "‒", "-", "―", "-", "−", "-")

// Detector locates a closed set of clause titles, optionally wrapped in
// "---" markers, case-insensitively.
type Detector struct {
	titles         map[string]string // lower-case -> canonical title
	pattern        *regexp.Regexp
	maxContent     int
	minWords       int
	minInputLength int
}

// Option configures the detector.
type Option func(*Detector)

// WithMaxContent sets the content ceiling in characters.
func WithMaxContent(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.maxContent = n
		}
	}
}

// WithMinWords sets the word count a section must exceed to be kept.
func WithMinWords(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.minWords = n
		}
	}
}

// WithMinInputLength sets the shortest input that is scanned.
func WithMinInputLength(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.minInputLength = n
		}
	}
}

// New creates a detector for titles. With no titles the default list is used.
func New(titles []string, opts ...Option) *Detector {
	if len(titles) == 0 {
		titles = domain.DefaultSectionTitles()
	}

	d := &Detector{
		titles:         make(map[string]string, len(titles)),
		maxContent:     DefaultMaxContent,
		minWords:       DefaultMinWords,
		minInputLength: DefaultMinInputLength,
	}
	for _, opt := range opts {
		opt(d)
	}

	var alternatives []string
	for _, t := range titles {
		t = strings.Join(strings.Fields(t), " ")
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := d.titles[key]; dup {
			continue
		}
		d.titles[key] = strings.ToUpper(t)
		alternatives = append(alternatives, titlePattern(t))
	}

	// Longest first so "POLICY COVERAGE" wins over a shorter title it contains.
	sort.SliceStable(alternatives, func(i, j int) bool {
		return len(alternatives[i]) > len(alternatives[j])
	})

	if len(alternatives) > 0 {
		d.pattern = regexp.MustCompile(`(?i)(?:-{2,}\s*)?\b(` + strings.Join(alternatives, "|") + `)\b(?:\s*-{2,})?`)
	}
	return d
}

// titlePattern quotes a title and lets any whitespace run separate its words.
func titlePattern(title string) string {
	words := strings.Fields(title)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}

// Titles returns the canonical titles the detector recognises, sorted.
func (d *Detector) Titles() []string {
	out := make([]string, 0, len(d.titles))
	for _, t := range d.titles {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Detect returns the sections of text ordered by position.
// Offsets refer to text after dash folding, which leaves canonical text unchanged.
func (d *Detector) Detect(text string) []domain.SectionSpan {
	if d.pattern == nil || utf8.RuneCountInString(text) < d.minInputLength {
		return nil
	}

	text = dashFolder.Replace(text)
	matches := d.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var spans []domain.SectionSpan
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		heading := strings.ToLower(strings.Join(strings.Fields(text[m[2]:m[3]]), " "))
		title := d.titles[heading]
		if seen[title] {
			continue
		}

		content := strings.TrimSpace(text[m[1]:end])
		if len(strings.Fields(content)) <= d.minWords {
			continue
		}

		truncated := false
		if utf8.RuneCountInString(content) > d.maxContent {
			content = truncateRunes(content, d.maxContent) + truncationMarker
			truncated = true
		}

		seen[title] = true
		spans = append(spans, domain.SectionSpan{
			Title:     title,
			Start:     m[0],
			End:       end,
			Content:   content,
			Truncated: truncated,
		})
	}
	return spans
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// AsMap returns the spans keyed by title.
func AsMap(spans []domain.SectionSpan) map[string]string {
	out := make(map[string]string, len(spans))
	for _, s := range spans {
		out[s.Title] = s.Content
	}
	return out
}
