package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

func TestMergeOutcomes_KeepsOrderAndCountsFallbacks(t *testing.T) {
	outcomes := []chunkOutcome{
		{Summary: "One."},
		{Summary: "two words here", Fallback: true, Err: errors.New("timeout")},
		{Summary: "Three! One."},
	}

	merged, fallbacks := mergeOutcomes(outcomes)

	assert.Equal(t, "One. two words here Three!", merged)
	assert.Equal(t, 1, fallbacks)
}

func TestMergeOutcomes_KeepsDecimalsAndAbbreviations(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []chunkOutcome
		want     string
	}{
		{
			name: "decimal amounts",
			outcomes: []chunkOutcome{
				{Summary: "Premium $500.00 due monthly."},
				{Summary: "Deductible $250.00 due monthly."},
			},
			want: "Premium $500.00 due monthly. Deductible $250.00 due monthly.",
		},
		{
			name: "repeated abbreviation",
			outcomes: []chunkOutcome{
				{Summary: "Coverage applies in the U.S. only."},
				{Summary: "Claims filed in the U.S. are paid in dollars."},
			},
			want: "Coverage applies in the U.S. only. Claims filed in the U.S. are paid in dollars.",
		},
		{
			name: "repeated sentence dropped",
			outcomes: []chunkOutcome{
				{Summary: "Premium is $1,200.00 per year. Claims within 30 days."},
				{Summary: "Premium is $1,200.00 per year! Renewal is automatic."},
			},
			want: "Premium is $1,200.00 per year. Claims within 30 days. Renewal is automatic.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, _ := mergeOutcomes(tt.outcomes)
			assert.Equal(t, tt.want, merged)
		})
	}
}

func TestSentencePieces_RoundTrip(t *testing.T) {
	text := "Premium: $1,200.00 is due. Is it paid?  Yes!\nSee U.S. terms"

	pieces := sentencePieces(text)

	assert.Equal(t, text, strings.Join(pieces, ""))
	assert.Equal(t, []string{"Premium: $1,200.00 is due. ", "Is it paid?  ", "Yes!\n", "See U.S. ", "terms"}, pieces)
}

// sentences builds n sentences of size words each.
func sentences(n, size int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		for j := 0; j < size-1; j++ {
			fmt.Fprintf(&b, "w%d ", j)
		}
		fmt.Fprintf(&b, "end%d. ", i)
	}
	return strings.TrimSpace(b.String())
}

func TestAdjustLength(t *testing.T) {
	t.Run("800 words to 500 cuts at sentence end", func(t *testing.T) {
		text := sentences(800/7+1, 7)
		require.GreaterOrEqual(t, domain.CountWords(text), 800)

		got := adjustLength(text, 500)

		assert.Equal(t, 497, domain.CountWords(got))
		assert.True(t, strings.HasSuffix(got, "."))
		assert.True(t, strings.HasPrefix(text, got), "result must be a prefix of the input")
	})

	t.Run("no terminator appends ellipsis", func(t *testing.T) {
		text := strings.TrimSpace(strings.Repeat("word ", 800))

		got := adjustLength(text, 500)

		assert.Equal(t, 500, domain.CountWords(got))
		assert.True(t, strings.HasSuffix(got, "word..."))
	})

	t.Run("decimal inside a word is not a terminator", func(t *testing.T) {
		got := adjustLength("Limit is 3.5 million dollars per claim today", 5)

		assert.Equal(t, "Limit is 3.5 million dollars...", got)
	})

	t.Run("under target unchanged", func(t *testing.T) {
		assert.Equal(t, "Short text.", adjustLength("Short text.", 500))
	})
}

func TestStructure(t *testing.T) {
	t.Run("fourteen sentences", func(t *testing.T) {
		var s []string
		for i := 1; i <= 14; i++ {
			s = append(s, fmt.Sprintf("s%d", i))
		}

		got := structure(s)

		assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, got[domain.SectionIntroduction])
		assert.Equal(t, []string{"s5", "s6", "s7", "s8", "s9", "s10"}, got[domain.SectionKeyInsights])
		assert.Equal(t, []string{"s11", "s12", "s13", "s14"}, got[domain.SectionConclusion])
	})

	t.Run("few sentences overlap", func(t *testing.T) {
		got := structure([]string{"a", "b", "c"})

		assert.Equal(t, []string{"a", "b", "c"}, got[domain.SectionIntroduction])
		assert.Empty(t, got[domain.SectionKeyInsights])
		assert.NotNil(t, got[domain.SectionKeyInsights])
		assert.Equal(t, []string{"a", "b", "c"}, got[domain.SectionConclusion])
	})

	t.Run("empty", func(t *testing.T) {
		got := structure(nil)

		assert.Len(t, got, 3)
		assert.Empty(t, got[domain.SectionIntroduction])
	})
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"One", "Two words", "Three"}, splitSentences("One.  Two words. . Three"))
	assert.Nil(t, splitSentences("  "))
	assert.Equal(t, []string{"Premium is $1,200.00", "Due March 1"}, splitSentences("Premium is $1,200.00. Due March 1."))
}

func TestKeyFindings(t *testing.T) {
	t.Run("keyword matches", func(t *testing.T) {
		got := keyFindings([]string{"The weather is fine", "Coverage includes theft", "The POLICY renews yearly"})

		assert.Equal(t, []string{"Coverage includes theft.", "The POLICY renews yearly."}, got)
	})

	t.Run("fallback to first seven", func(t *testing.T) {
		var s []string
		for i := 0; i < 9; i++ {
			s = append(s, fmt.Sprintf("plain %d", i))
		}

		got := keyFindings(s)

		require.Len(t, got, 7)
		assert.Equal(t, "plain 0.", got[0])
		assert.Equal(t, "plain 6.", got[6])
	})

	t.Run("no sentences", func(t *testing.T) {
		assert.Empty(t, keyFindings(nil))
	})
}

func TestExcerpts(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("alpha ", 150))
	assert.Equal(t, 100, domain.CountWords(excerpt(text, 100)))
	assert.Equal(t, "a b", excerpt(" a   b ", 100))

	assert.Equal(t, "short...", sectionExcerpt("short"))
	long := strings.Repeat("é", 500)
	assert.Equal(t, strings.Repeat("é", 400)+"...", sectionExcerpt(long))
}

func TestReadability(t *testing.T) {
	assert.Zero(t, readability(""))
	assert.InDelta(t, 119.19, readability("The cat sat."), 0.001)
	assert.Less(t,
		readability("Notwithstanding indemnification obligations, subrogation applies retroactively."),
		readability("The cat sat on the mat."))
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"the", 1},
		{"table", 2},
		{"policy", 3},
		{"Coverage,", 3},
		{"1,200", 0},
		{"rhythm", 1},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, countSyllables(tt.word))
		})
	}
}
