// Package compliance scores policy text for clause completeness and risky
// wording. Scoring is deterministic and every deduction is explained in the
// report.
package compliance

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// Ensure Scorer implements the interface.
var _ driven.ComplianceScorer = (*Scorer)(nil)

// Recommendation texts.
const (
	RecommendMissingPrefix = "Add missing sections: "
	RecommendLegalReview   = "Review high-risk terms with legal expert"
	RecommendProfessional  = "Consider professional policy review"
	RecommendSpecialist    = "Review with insurance specialist"
	RecommendNone          = "Policy appears comprehensive"
)

// Score thresholds for the blanket review recommendations.
const (
	professionalReviewBelow = 70
	specialistReviewBelow   = 85
)

// Scorer applies a Rules table to text.
type Scorer struct {
	rules Rules
}

// New creates a scorer. Rules are lower-cased once up front.
func New(rules Rules) (*Scorer, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	normalised := Rules{MissingPenalty: rules.MissingPenalty}
	for _, c := range rules.Clauses {
		kws := make([]string, len(c.Keywords))
		for i, kw := range c.Keywords {
			kws[i] = strings.ToLower(kw)
		}
		normalised.Clauses = append(normalised.Clauses, domain.KeywordFamily{Name: c.Name, Keywords: kws})
	}
	for _, r := range rules.Risks {
		r.Phrase = strings.ToLower(r.Phrase)
		normalised.Risks = append(normalised.Risks, r)
	}
	return &Scorer{rules: normalised}, nil
}

// Default returns a scorer for DefaultRules.
func Default() *Scorer {
	s, err := New(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("compliance: default rules: %v", err))
	}
	return s
}

// Score builds the compliance report for text.
func (s *Scorer) Score(text string) *domain.ComplianceReport {
	lower := strings.ToLower(text)
	report := &domain.ComplianceReport{
		SectionPresence: make([]domain.ClauseCheck, 0, len(s.rules.Clauses)),
		RiskFlags:       []domain.RiskFlag{},
	}

	score := 100
	for _, clause := range s.rules.Clauses {
		present := containsAny(lower, clause.Keywords)
		report.SectionPresence = append(report.SectionPresence, domain.ClauseCheck{Name: clause.Name, Present: present})
		if !present {
			score -= s.rules.MissingPenalty
		}
	}

	for _, risk := range s.rules.Risks {
		if !strings.Contains(lower, risk.Phrase) {
			continue
		}
		report.RiskFlags = append(report.RiskFlags, domain.RiskFlag{
			Phrase:      risk.Phrase,
			Severity:    risk.Severity,
			Description: risk.Description,
		})
		score -= risk.Severity.Penalty()
	}

	report.Score = domain.ClampScore(score)
	report.Status = domain.StatusForScore(report.Score)
	report.Recommendations = Recommendations(report)
	return report
}

// Recommendations derives follow-up actions from a report.
func Recommendations(report *domain.ComplianceReport) []string {
	var out []string

	if missing := report.Missing(); len(missing) > 0 {
		out = append(out, RecommendMissingPrefix+strings.Join(missing, ", "))
	}
	if report.HasSeverity(domain.SeverityHigh) {
		out = append(out, RecommendLegalReview)
	}

	switch {
	case report.Score < professionalReviewBelow:
		out = append(out, RecommendProfessional)
	case report.Score < specialistReviewBelow:
		out = append(out, RecommendSpecialist)
	}

	if len(out) == 0 {
		out = append(out, RecommendNone)
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
