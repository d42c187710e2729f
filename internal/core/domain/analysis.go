package domain

import "time"

// AnalysisMetrics carries size and timing figures for one analysis.
type AnalysisMetrics struct {
	OriginalWords  int           `json:"original_words"`
	SummaryWords   int           `json:"summary_words"`
	SummaryLength  int           `json:"summary_length"`
	Chunks         int           `json:"chunks"`
	ChunkFallbacks int           `json:"chunk_fallbacks"`
	Readability    float64       `json:"readability"`
	Duration       time.Duration `json:"duration_ns"`
}

// AnalysisResult is the output contract handed to presentation layers.
// Failures are reported in-band: Success is false and Error describes the category.
type AnalysisResult struct {
	// ID is the unique identifier of this analysis.
	ID string `json:"id"`

	// URI is the analysed document's location.
	URI string `json:"uri,omitempty"`

	// Success is false when the analysis failed.
	Success bool `json:"success"`

	// Error is a human-readable failure message.
	Error string `json:"error,omitempty"`

	// ErrorKind is the machine-readable failure category.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// Summary is nil when summarisation was skipped or failed.
	Summary *SummaryResult `json:"summary,omitempty"`

	// Entities maps category to validated value.
	Entities Entities `json:"entities"`

	// Compliance is the clause and risk report.
	Compliance *ComplianceReport `json:"compliance,omitempty"`

	// Metrics carries word, length and timing figures.
	Metrics AnalysisMetrics `json:"metrics"`
}

// Failed builds a failure result for err.
func Failed(id, uri string, err error) *AnalysisResult {
	return &AnalysisResult{
		ID:        id,
		URI:       uri,
		Success:   false,
		Error:     err.Error(),
		ErrorKind: KindOf(err),
		Entities:  Entities{},
	}
}

// AgentStatus describes the configuration an analysis service runs with.
type AgentStatus struct {
	// Ready is false when no summarisation provider is configured.
	Ready bool `json:"ready"`

	// Provider and Model identify the summarisation backend.
	Provider AIProvider `json:"provider,omitempty"`
	Model    string     `json:"model,omitempty"`

	// TargetWords is the final summary length goal.
	TargetWords int `json:"target_words"`

	// GlobalTimeout bounds the fan-out and merge phase.
	GlobalTimeout time.Duration `json:"global_timeout_ns"`

	// SupportedFormats lists the accepted declared types.
	SupportedFormats []DeclaredType `json:"supported_formats"`
}
