package compliance

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// Rules is the scoring table. Clause and risk order is preserved in reports.
type Rules struct {
	// Clauses are the required clause categories and their keyword families.
	Clauses []domain.KeywordFamily `toml:"clauses"`

	// MissingPenalty is subtracted once per absent clause.
	MissingPenalty int `toml:"missing_penalty"`

	// Risks are literal phrases that flag contractual risk.
	Risks []domain.RiskRule `toml:"risks"`
}

// DefaultRules returns the built-in clause and risk tables.
func DefaultRules() Rules {
	return Rules{
		Clauses: []domain.KeywordFamily{
			{Name: "policy_number", Keywords: []string{"policy number", "policy no", "policy #"}},
			{Name: "effective_date", Keywords: []string{"effective date", "start date", "commencement"}},
			{Name: "coverage", Keywords: []string{"coverage", "insured", "protection"}},
			{Name: "premium", Keywords: []string{"premium", "payment", "amount due"}},
			{Name: "exclusions", Keywords: []string{"exclusion", "not covered", "exception"}},
			{Name: "claims", Keywords: []string{"claim", "report", "notification"}},
			{Name: "conditions", Keywords: []string{"condition", "requirement", "obligation"}},
		},
		MissingPenalty: 10,
		Risks: []domain.RiskRule{
			{Phrase: "unlimited liability", Severity: domain.SeverityHigh, Description: "No limit on liability exposure"},
			{Phrase: "absolute liability", Severity: domain.SeverityHigh, Description: "Liability regardless of fault"},
			{Phrase: "sole discretion", Severity: domain.SeverityMedium, Description: "One-sided decision power"},
			{Phrase: "automatic renewal", Severity: domain.SeverityMedium, Description: "May auto-renew without notice"},
			{Phrase: "reasonable", Severity: domain.SeverityLow, Description: "Subjective terms may vary"},
		},
	}
}

type rulesFile struct {
	Clauses        []domain.KeywordFamily `toml:"clauses"`
	MissingPenalty *int                   `toml:"missing_penalty"`
	Risks          []domain.RiskRule      `toml:"risks"`
}

// ParseRules decodes a TOML rules document over the defaults.
// A table present in data replaces the default table entirely.
func ParseRules(data []byte) (Rules, error) {
	var file rulesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return Rules{}, fmt.Errorf("parse compliance rules: %w", err)
	}

	rules := DefaultRules()
	if file.Clauses != nil {
		rules.Clauses = file.Clauses
	}
	if file.MissingPenalty != nil {
		rules.MissingPenalty = *file.MissingPenalty
	}
	if file.Risks != nil {
		rules.Risks = file.Risks
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate checks severities and that every entry can match something.
func (r Rules) Validate() error {
	if r.MissingPenalty < 0 {
		return fmt.Errorf("%w: missing_penalty must not be negative", domain.ErrInvalidInput)
	}
	for _, c := range r.Clauses {
		if c.Name == "" || len(c.Keywords) == 0 {
			return fmt.Errorf("%w: clause %q needs a name and keywords", domain.ErrInvalidInput, c.Name)
		}
		for _, kw := range c.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%w: clause %q has an empty keyword", domain.ErrInvalidInput, c.Name)
			}
		}
	}
	for _, risk := range r.Risks {
		if strings.TrimSpace(risk.Phrase) == "" {
			return fmt.Errorf("%w: risk phrase must not be empty", domain.ErrInvalidInput)
		}
		if !risk.Severity.IsValid() {
			return fmt.Errorf("%w: risk %q has unknown severity %q", domain.ErrInvalidInput, risk.Phrase, risk.Severity)
		}
	}
	return nil
}
