package domain

import "time"

// SummaryState tracks the progress of one document through summarisation.
type SummaryState string

// Summarisation states, in the order a successful run visits them.
// Failed is reachable from any state.
const (
	SummaryStateExtracted      SummaryState = "extracted"
	SummaryStateChunked        SummaryState = "chunked"
	SummaryStateSummarizing    SummaryState = "summarizing"
	SummaryStateRefining       SummaryState = "refining"
	SummaryStateLengthAdjusted SummaryState = "length_adjusted"
	SummaryStateDone           SummaryState = "done"
	SummaryStateFailed         SummaryState = "failed"
)

// String returns the string representation.
func (s SummaryState) String() string {
	return string(s)
}

// Summary section names.
const (
	SectionIntroduction = "Introduction"
	SectionKeyInsights  = "Key Insights"
	SectionConclusion   = "Conclusion"
)

// SectionSummary is the summary of one detected policy section.
type SectionSummary struct {
	// Text is the summarised section, or an excerpt when Fallback is set.
	Text string `json:"text"`

	// Fallback is true when summarisation failed and Text is a verbatim excerpt.
	Fallback bool `json:"fallback"`
}

// SummaryResult is the condensed, structured summary of a document.
type SummaryResult struct {
	// Text is the final summary text.
	Text string `json:"text"`

	// WordCount is the number of words in Text.
	WordCount int `json:"word_count"`

	// OriginalWordCount is the number of words in the canonical document text.
	OriginalWordCount int `json:"original_word_count"`

	// Duration is the wall-clock time spent summarising.
	Duration time.Duration `json:"duration_ns"`

	// Sections maps Introduction / Key Insights / Conclusion to their sentences.
	Sections map[string][]string `json:"sections"`

	// KeyFindings are sentences that mention policy keywords.
	KeyFindings []string `json:"key_findings"`

	// PolicySections maps detected clause titles to their summaries.
	PolicySections map[string]SectionSummary `json:"policy_sections,omitempty"`

	// ChunkCount is the number of chunks submitted to the summariser.
	ChunkCount int `json:"chunk_count"`

	// ChunkFallbacks is the number of chunks that fell back to an excerpt.
	ChunkFallbacks int `json:"chunk_fallbacks"`

	// Readability is the Flesch reading ease score of Text.
	Readability float64 `json:"readability"`
}
