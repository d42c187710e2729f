package driven

import "github.com/custodia-labs/polidigest/internal/core/domain"

// EntityExtractor recovers structured facts from free text.
// Implementations must be pure and safe for concurrent use.
type EntityExtractor interface {
	// Extract returns validated entities; categories without a valid match are absent.
	Extract(text string) domain.Entities
}

// ComplianceScorer evaluates clause completeness and risk phrases.
// Implementations must be deterministic and safe for concurrent use.
type ComplianceScorer interface {
	// Score builds the compliance report for text.
	Score(text string) *domain.ComplianceReport
}

// MetricsRecorder receives pipeline measurements.
// Services substitute a no-op recorder when none is configured.
type MetricsRecorder interface {
	// LLMCall records the outcome of one summarisation call for a pipeline stage.
	LLMCall(stage, outcome string)

	// StageDuration records how long a pipeline stage took, in seconds.
	StageDuration(stage string, seconds float64)

	// Analysis records the outcome of one analysis and its compliance score.
	Analysis(outcome string, score int)
}

// Outcome labels passed to MetricsRecorder.
const (
	OutcomeOK       = "ok"
	OutcomeTimeout  = "timeout"
	OutcomeFailed   = "failed"
	OutcomeFallback = "fallback"
)
