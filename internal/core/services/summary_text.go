package services

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/polidigest/internal/core/domain"
)

// Summary structure sizes, in sentences.
const (
	introSentences      = 4
	insightSentences    = 6
	conclusionSentences = 4
	findingsFallback    = 7
)

// findingKeywords mark sentences worth listing as key findings.
var findingKeywords = []string{
	"objective", "policy", "benefit", "coverage", "requirement",
	"compliance", "scope", "conclusion", "recommendation",
}

// sentenceEnd matches terminators that end a sentence. A terminator must be
// followed by whitespace or the end of text, so "$1,200.00" and "U.S." stay whole.
var sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// sentencePieces cuts text after each sentence end. Concatenating the pieces
// gives back text unchanged.
func sentencePieces(text string) []string {
	var pieces []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		pieces = append(pieces, text[start:loc[1]])
		start = loc[1]
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

// mergeOutcomes joins outcomes in order, dropping sentences already seen in
// an earlier outcome. It returns the merged text and the fallback count.
func mergeOutcomes(outcomes []chunkOutcome) (string, int) {
	seen := make(map[string]bool)
	var parts []string
	fallbacks := 0

	for _, o := range outcomes {
		if o.Fallback {
			fallbacks++
		}
		for _, sentence := range sentencePieces(o.Summary) {
			sentence = strings.TrimSpace(sentence)
			key := strings.ToLower(strings.TrimRight(sentence, ".!? "))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			parts = append(parts, sentence)
		}
	}
	return strings.Join(parts, " "), fallbacks
}

// adjustLength trims text to at most target words. The cut backs up to the
// last word ending a sentence; when none exists an ellipsis is appended.
func adjustLength(text string, target int) string {
	words := strings.Fields(text)
	if target <= 0 || len(words) <= target {
		return text
	}
	for i := target - 1; i >= 0; i-- {
		if strings.ContainsAny(words[i][len(words[i])-1:], ".!?") {
			return strings.Join(words[:i+1], " ")
		}
	}
	return strings.Join(words[:target], " ") + "..."
}

// splitSentences splits text at sentence ends, drops the closing periods and
// skips empty pieces.
func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentencePieces(text) {
		if s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ".")); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// structure slices sentences into Introduction, Key Insights and Conclusion.
// Buckets overlap or stay empty for short summaries.
func structure(sentences []string) map[string][]string {
	n := len(sentences)
	insightsEnd := min(n, introSentences+insightSentences)

	sections := map[string][]string{
		domain.SectionIntroduction: clone(sentences[:min(n, introSentences)]),
		domain.SectionKeyInsights:  {},
		domain.SectionConclusion:   clone(sentences[max(0, n-conclusionSentences):]),
	}
	if n > introSentences {
		sections[domain.SectionKeyInsights] = clone(sentences[introSentences:insightsEnd])
	}
	return sections
}

func clone(s []string) []string {
	return append([]string{}, s...)
}

// keyFindings returns sentences mentioning a finding keyword, or the first
// sentences of the summary when none does.
func keyFindings(sentences []string) []string {
	findings := []string{}
	for _, s := range sentences {
		lower := strings.ToLower(s)
		for _, k := range findingKeywords {
			if strings.Contains(lower, k) {
				findings = append(findings, s+".")
				break
			}
		}
	}
	if len(findings) > 0 {
		return findings
	}
	for _, s := range sentences[:min(len(sentences), findingsFallback)] {
		findings = append(findings, s+".")
	}
	return findings
}

// excerpt returns the first n words of text.
func excerpt(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}

// sectionExcerpt returns the first sectionExcerptChars runes of content with an ellipsis.
func sectionExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) > sectionExcerptChars {
		runes = runes[:sectionExcerptChars]
	}
	return strings.TrimSpace(string(runes)) + "..."
}

// readability returns the Flesch reading ease of text, rounded to two decimals.
// Syllables are estimated from vowel groups.
func readability(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	sentences := 0
	for _, s := range sentencePieces(text) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	score := 206.835 -
		1.015*float64(len(words))/float64(sentences) -
		84.6*float64(syllables)/float64(len(words))
	return math.Round(score*100) / 100
}

func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }))
	if word == "" {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	return max(count, 1)
}
