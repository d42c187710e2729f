package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

func TestExtract_DeclarationsLine(t *testing.T) {
	got := Default().Extract("Policy Number: POL-2024-9981, Effective Date: March 1, 2024, Premium: $1,200.00")

	assert.Equal(t, domain.Entities{
		domain.EntityPolicyNumber:  "POL-2024-9981",
		domain.EntityEffectiveDate: "March 1, 2024",
		domain.EntityPremiumAmount: "$1,200.00",
	}, got)
}

func TestExtract_EmptyText(t *testing.T) {
	assert.Empty(t, Default().Extract(""))
	assert.Empty(t, Default().Extract("   \n\t"))
}

func TestExtract_PolicyNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "labelled",
			text: "See Policy #: HX-99812345 for details.",
			want: "HX-99812345",
		},
		{
			name: "upper-cased",
			text: "policy no: abc-1234567",
			want: "ABC-1234567",
		},
		{
			name: "unlabelled digit groups",
			text: "Reference 123-456-7890 for your records",
			want: "123-456-7890",
		},
		{
			name: "context keyword beats earlier candidate",
			text: "Ticket CLM-55512 was logged. " + strings.Repeat("x ", 30) + "Policy HX123456 renews.",
			want: "HX123456",
		},
		{
			name: "common word rejected",
			text: "Policy Number: coverage applies",
		},
		{
			name: "label without digits rejected",
			text: "Policy ID: PREMIUMS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Default().Extract(tt.text).Get(domain.EntityPolicyNumber)
			if tt.want == "" {
				assert.False(t, ok, "unexpected policy number %q", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_InsuredName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"named insured", "Named Insured: Jane Doe, Policy Number: HX-1234567", "Jane Doe"},
		{"stops at label word", "Insured: John Smith Effective Date: 01/01/2024", "John Smith"},
		{"declarations line", "Insured: John Smith Policy Number: ABC123456", "John Smith"},
		{"stops at premium label", "Policyholder: Ana Maria Silva Premium: $900", "Ana Maria Silva"},
		{"company", "Policyholder: Acme Widgets LLC", "Acme Widgets LLC"},
		{"name label", "Name: Maria Lopez", "Maria Lopez"},
		{"forbidden term", "Insured: Liability Coverage Section", ""},
		{"lower-case words", "the insured party must notify us", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Default().Extract(tt.text).Get(domain.EntityInsuredName)
			if tt.want == "" {
				assert.False(t, ok, "unexpected name %q", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Amounts(t *testing.T) {
	got := Default().Extract("Annual Premium: $2,400. Deductible: $500. Coverage Limit: $100,000. Estimated Value: $350,000.50")

	assert.Equal(t, "$2,400", got[domain.EntityPremiumAmount])
	assert.Equal(t, "$500", got[domain.EntityDeductible])
	assert.Equal(t, "$100,000", got[domain.EntityCoverageLimit])
	assert.Equal(t, "$350,000.50", got[domain.EntityEstimatedValue])
}

func TestExtract_AmountWithoutContext(t *testing.T) {
	assert.Empty(t, Default().Extract("The total of $750 appears here."))
}

func TestExtract_AmountIgnoresIdentifiers(t *testing.T) {
	got := Default().Extract("Premium reference 4421 on form 12-B.")
	_, ok := got.Get(domain.EntityPremiumAmount)
	assert.False(t, ok)
}

func TestExtract_Dates(t *testing.T) {
	got := Default().Extract("Effective Date: 01/15/2024. Expiration Date: 01/15/2025. " +
		"Date of Birth: 1980-06-30. Signed on Feb 2, 2024 by the agent.")

	assert.Equal(t, "01/15/2024", got[domain.EntityEffectiveDate])
	assert.Equal(t, "01/15/2025", got[domain.EntityExpiryDate])
	assert.Equal(t, "1980-06-30", got[domain.EntityBirthDate])
	assert.Equal(t, "Feb 2, 2024", got[domain.EntitySignatureDate])
}

func TestExtract_DateWithoutContext(t *testing.T) {
	assert.Empty(t, Default().Extract("Printed 03/04/2024 for reference."))
}

func TestExtract_FirstValuePerCategoryWins(t *testing.T) {
	got := Default().Extract("Effective Date: 01/01/2024 and effective again 02/02/2024")
	assert.Equal(t, "01/01/2024", got[domain.EntityEffectiveDate])
}

func TestExtract_PolicyType(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Your homeowner policy does not cover your car.", "Auto Insurance"},
		{"Homeowners coverage for the dwelling.", "Home Insurance"},
		{"We take good care of your travel plans.", "Travel Insurance"},
		{"Commercial general liability.", "Business Insurance"},
		{"Nothing to classify here.", ""},
	}

	for _, tt := range tests {
		got, ok := Default().Extract(tt.text).Get(domain.EntityPolicyType)
		if tt.want == "" {
			assert.False(t, ok, "unexpected type %q for %q", got, tt.text)
			continue
		}
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "Policy Number: POL-2024-9981. Insured: Jane Doe. Premium: $1,200.00. Effective Date: 01/15/2024."
	e := Default()
	first := e.Extract(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Extract(text))
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	rules := DefaultRules()
	rules.PolicyPatterns = []string{"("}

	_, err := New(rules)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractor_Rules(t *testing.T) {
	rules := DefaultRules()
	rules.CommonWords = []string{"dummy"}

	e, err := New(rules)
	require.NoError(t, err)
	assert.Equal(t, []string{"dummy"}, e.Rules().CommonWords)
}
