package entities

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// Rules is the data table that drives extraction. Every list is ordered:
// earlier patterns and families take precedence.
type Rules struct {
	// PolicyPatterns generate policy number candidates. When a pattern has a
	// capture group the first non-empty group is the candidate.
	PolicyPatterns []string `toml:"policy_patterns"`

	// PolicyContextKeywords mark a candidate as labelled when found near it.
	PolicyContextKeywords []string `toml:"policy_context_keywords"`

	// PolicyContextWindow is the context size in characters on each side.
	PolicyContextWindow int `toml:"policy_context_window"`

	// CommonWords are never accepted as policy numbers.
	CommonWords []string `toml:"common_words"`

	// NamePatterns capture an insured name after a label.
	NamePatterns []string `toml:"name_patterns"`

	// NameForbiddenTerms reject a name that contains them.
	NameForbiddenTerms []string `toml:"name_forbidden_terms"`

	// NameStopWords end a captured name: "John Smith Effective" becomes "John Smith".
	NameStopWords []string `toml:"name_stop_words"`

	// AmountFamilies classify money by nearby keywords. Name is an entity category.
	AmountFamilies []domain.KeywordFamily `toml:"amount_families"`

	// AmountContextWindow is the context size for money, in characters.
	AmountContextWindow int `toml:"amount_context_window"`

	// DatePatterns generate date candidates.
	DatePatterns []string `toml:"date_patterns"`

	// DateFamilies classify dates by nearby keywords. Name is an entity category.
	DateFamilies []domain.KeywordFamily `toml:"date_families"`

	// DateContextWindow is the context size for dates, in characters.
	DateContextWindow int `toml:"date_context_window"`

	// PolicyTypes map whole-word keywords to a policy type label, in priority order.
	PolicyTypes []domain.KeywordFamily `toml:"policy_types"`
}

// DefaultRules returns the built-in extraction table.
func DefaultRules() Rules {
	return Rules{
		PolicyPatterns: []string{
			`(?i)\bPolicy\s*(?:No|Number|#|ID)[:\s\-]+([A-Z0-9\-]{6,20})`,
			`(?i)\bPOL[:\s\-]+([A-Z0-9\-]{6,20})`,
			`(?i)\bID[:\s\-]+([A-Z0-9\-]{6,20})`,
			`(?i)\b(?:INS|POL|PLC|CLM|CTR)[\-_]?\d{3,10}\b`,
			`\b\d{3}[-_]\d{3}[-_]?\d{3,4}\b`,
			`\b[A-Z]{2,4}\d{6,10}\b`,
		},
		PolicyContextKeywords: []string{"policy", "number", "id", "no", "#"},
		PolicyContextWindow:   50,
		CommonWords: []string{
			"insuring", "insurance", "policy", "coverage",
			"liability", "premium", "effective", "date",
		},
		NamePatterns: []string{
			`(?i:Insured|Policyholder)[\s:]+([A-Z][\w.\- ]{0,40}?\b(?:Inc|LLC|Ltd|Corp|Company)\b)`,
			`(?i:Named\s+Insured|Insured|Policyholder)[\s:]+([A-Z][a-z]+(?:\s+[A-Z][a-z.]+){1,3})`,
			`(?i:Name)[\s:]+([A-Z][a-z]+(?:\s+[A-Z][a-z.]+){1,3})`,
		},
		NameForbiddenTerms: []string{
			"insuring", "agreement", "liability", "coverage",
			"premium", "deductible", "limit", "policy", "claims",
		},
		NameStopWords: []string{
			"address", "agent", "born", "coverage", "date", "dob", "effective",
			"email", "expiry", "insurer", "number", "period", "phone", "policy",
			"premium", "type",
		},
		AmountFamilies: []domain.KeywordFamily{
			{Name: string(domain.EntityPremiumAmount), Keywords: []string{"premium", "annual premium", "payment", "fee", "amount due"}},
			{Name: string(domain.EntityDeductible), Keywords: []string{"deductible", "excess", "retention"}},
			{Name: string(domain.EntityCoverageLimit), Keywords: []string{"limit", "maximum", "coverage", "sum insured", "liability limit"}},
			{Name: string(domain.EntityEstimatedValue), Keywords: []string{"value", "worth", "estimated", "appraised"}},
		},
		AmountContextWindow: 30,
		DatePatterns: []string{
			`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.? \d{1,2},? \d{4}\b`,
			`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`,
			`\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`,
		},
		DateFamilies: []domain.KeywordFamily{
			{Name: string(domain.EntityEffectiveDate), Keywords: []string{"effective", "start", "commence", "inception"}},
			{Name: string(domain.EntityExpiryDate), Keywords: []string{"expir", "end", "until", "terminat"}},
			{Name: string(domain.EntityBirthDate), Keywords: []string{"date of birth", "dob", "born"}},
			{Name: string(domain.EntitySignatureDate), Keywords: []string{"sign", "execute", "dated"}},
		},
		DateContextWindow: 30,
		PolicyTypes: []domain.KeywordFamily{
			{Name: "Auto Insurance", Keywords: []string{"auto", "automobile", "vehicle", "car"}},
			{Name: "Home Insurance", Keywords: []string{"home", "homeowner", "property", "dwelling"}},
			{Name: "Health Insurance", Keywords: []string{"health", "medical", "hospital"}},
			{Name: "Life Insurance", Keywords: []string{"life", "death benefit"}},
			{Name: "Business Insurance", Keywords: []string{"business", "commercial"}},
			{Name: "Travel Insurance", Keywords: []string{"travel", "trip"}},
		},
	}
}

// rulesFile is the on-disk shape. Pointer and nil fields mark tables the
// document leaves out.
type rulesFile struct {
	PolicyPatterns        []string               `toml:"policy_patterns"`
	PolicyContextKeywords []string               `toml:"policy_context_keywords"`
	PolicyContextWindow   *int                   `toml:"policy_context_window"`
	CommonWords           []string               `toml:"common_words"`
	NamePatterns          []string               `toml:"name_patterns"`
	NameForbiddenTerms    []string               `toml:"name_forbidden_terms"`
	NameStopWords         []string               `toml:"name_stop_words"`
	AmountFamilies        []domain.KeywordFamily `toml:"amount_families"`
	AmountContextWindow   *int                   `toml:"amount_context_window"`
	DatePatterns          []string               `toml:"date_patterns"`
	DateFamilies          []domain.KeywordFamily `toml:"date_families"`
	DateContextWindow     *int                   `toml:"date_context_window"`
	PolicyTypes           []domain.KeywordFamily `toml:"policy_types"`
}

// ParseRules decodes a TOML rules document over the defaults.
// A table present in data replaces the default table entirely.
func ParseRules(data []byte) (Rules, error) {
	var file rulesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return Rules{}, fmt.Errorf("parse entity rules: %w", err)
	}

	rules := DefaultRules()
	replace(&rules.PolicyPatterns, file.PolicyPatterns)
	replace(&rules.PolicyContextKeywords, file.PolicyContextKeywords)
	replace(&rules.CommonWords, file.CommonWords)
	replace(&rules.NamePatterns, file.NamePatterns)
	replace(&rules.NameForbiddenTerms, file.NameForbiddenTerms)
	replace(&rules.NameStopWords, file.NameStopWords)
	replace(&rules.AmountFamilies, file.AmountFamilies)
	replace(&rules.DatePatterns, file.DatePatterns)
	replace(&rules.DateFamilies, file.DateFamilies)
	replace(&rules.PolicyTypes, file.PolicyTypes)
	if file.PolicyContextWindow != nil {
		rules.PolicyContextWindow = *file.PolicyContextWindow
	}
	if file.AmountContextWindow != nil {
		rules.AmountContextWindow = *file.AmountContextWindow
	}
	if file.DateContextWindow != nil {
		rules.DateContextWindow = *file.DateContextWindow
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func replace[T any](dst *[]T, src []T) {
	if src != nil {
		*dst = src
	}
}

// Validate checks that family names are known entity categories.
func (r Rules) Validate() error {
	for _, families := range [][]domain.KeywordFamily{r.AmountFamilies, r.DateFamilies} {
		for _, f := range families {
			if !domain.EntityCategory(f.Name).IsValid() {
				return fmt.Errorf("%w: unknown entity category %q", domain.ErrInvalidInput, f.Name)
			}
		}
	}
	if r.PolicyContextWindow < 0 || r.AmountContextWindow < 0 || r.DateContextWindow < 0 {
		return fmt.Errorf("%w: context windows must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
