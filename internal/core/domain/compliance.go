package domain

// Severity is the risk tier of a flagged phrase.
type Severity string

// Risk severities.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// IsValid returns true if the severity is recognised.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// Penalty returns the points subtracted from the compliance score.
// Low severity flags are recorded but do not penalise.
func (s Severity) Penalty() int {
	switch s {
	case SeverityHigh:
		return 15
	case SeverityMedium:
		return 5
	default:
		return 0
	}
}

// ComplianceStatus is the tier derived from a compliance score.
type ComplianceStatus string

// Compliance tiers.
const (
	StatusCompliant         ComplianceStatus = "compliant"
	StatusReviewRecommended ComplianceStatus = "review_recommended"
	StatusNeedsAttention    ComplianceStatus = "needs_attention"
)

// StatusForScore maps a score onto its tier: >= 80 compliant,
// 60-79 review recommended, below 60 needs attention.
func StatusForScore(score int) ComplianceStatus {
	switch {
	case score >= 80:
		return StatusCompliant
	case score >= 60:
		return StatusReviewRecommended
	default:
		return StatusNeedsAttention
	}
}

// Description returns a human-readable description of the status.
func (s ComplianceStatus) Description() string {
	switch s {
	case StatusCompliant:
		return "Compliant"
	case StatusReviewRecommended:
		return "Review recommended"
	case StatusNeedsAttention:
		return "Needs attention"
	default:
		return unknownDescription
	}
}

// RiskRule is one entry of the risk phrase table.
type RiskRule struct {
	// Phrase is matched as a lower-case literal substring.
	Phrase string `toml:"phrase"`

	// Severity is the risk tier.
	Severity Severity `toml:"severity"`

	// Description explains the risk to a reader.
	Description string `toml:"description"`
}

// RiskFlag records a risk phrase found in a document.
type RiskFlag struct {
	Phrase      string   `json:"phrase"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// ClauseCheck records whether a required clause category is present.
type ClauseCheck struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// ComplianceReport is the explainable result of compliance scoring.
type ComplianceReport struct {
	// SectionPresence lists every required clause category in rule order.
	SectionPresence []ClauseCheck `json:"section_presence"`

	// RiskFlags lists matched risk phrases in table order.
	RiskFlags []RiskFlag `json:"risk_flags"`

	// Score is clamped to [0, 100].
	Score int `json:"score"`

	// Status is derived from Score.
	Status ComplianceStatus `json:"status"`

	// Recommendations are deterministic follow-up actions.
	Recommendations []string `json:"recommendations"`
}

// Missing returns the names of absent clause categories in rule order.
func (r *ComplianceReport) Missing() []string {
	var missing []string
	for _, c := range r.SectionPresence {
		if !c.Present {
			missing = append(missing, c.Name)
		}
	}
	return missing
}

// HasSeverity returns true if any flag has the given severity.
func (r *ComplianceReport) HasSeverity(s Severity) bool {
	for _, f := range r.RiskFlags {
		if f.Severity == s {
			return true
		}
	}
	return false
}

// ClampScore bounds a score to [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
