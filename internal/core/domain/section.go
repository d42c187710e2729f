package domain

// SectionSpan is a detected policy clause heading and the content that follows it.
type SectionSpan struct {
	// Title is the canonical (upper-case) heading name.
	Title string

	// Start is the byte offset of the heading within the scanned text.
	Start int

	// End is the byte offset where the section content stops:
	// the start of the next heading, or the end of the text.
	End int

	// Content is the text between the heading and End, trimmed.
	Content string

	// Truncated is true when Content was cut at the size ceiling.
	Truncated bool
}

// KeywordFamily is a named set of lower-case keywords.
// Families drive data-driven classification throughout the pipeline.
type KeywordFamily struct {
	// Name is the category the family votes for.
	Name string `toml:"name"`

	// Keywords are matched as case-insensitive substrings.
	Keywords []string `toml:"keywords"`
}
