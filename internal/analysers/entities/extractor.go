// Package entities recovers structured facts (policy number, insured name,
// money, dates, policy type) from policy text.
//
// Every value passes through a pattern that proposes candidates and a
// validator or context classifier that decides whether to keep them. Raw
// pattern captures are never returned unchecked.
package entities

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/polidigest/internal/core/domain"
	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.EntityExtractor = (*Extractor)(nil)

var (
	datePrefix  = regexp.MustCompile(`^\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`)
	bareAmount  = regexp.MustCompile(`^\$?\d+\.?\d{0,2}$`)
	onlyDigits  = regexp.MustCompile(`^\d+$`)
	moneyAmount = regexp.MustCompile(`([$€£₹])?\s?(\d{1,3}(?:,\d{3})+(?:\.\d{2})?|\d+(?:\.\d{2})?)`)
)

// typeMatcher recognises one policy type family.
type typeMatcher struct {
	label string
	re    *regexp.Regexp
}

// Extractor applies a Rules table to text. It holds no mutable state.
type Extractor struct {
	rules          Rules
	policyPatterns []*regexp.Regexp
	namePatterns   []*regexp.Regexp
	datePatterns   []*regexp.Regexp
	policyTypes    []typeMatcher
	commonWords    map[string]bool
	stopWords      map[string]bool
}

// New compiles rules into an extractor.
func New(rules Rules) (*Extractor, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{
		rules:       rules,
		commonWords: lowerSet(rules.CommonWords),
		stopWords:   lowerSet(rules.NameStopWords),
	}

	var err error
	if e.policyPatterns, err = compileAll("policy pattern", rules.PolicyPatterns); err != nil {
		return nil, err
	}
	if e.namePatterns, err = compileAll("name pattern", rules.NamePatterns); err != nil {
		return nil, err
	}
	if e.datePatterns, err = compileAll("date pattern", rules.DatePatterns); err != nil {
		return nil, err
	}

	for _, family := range rules.PolicyTypes {
		alternatives := make([]string, 0, len(family.Keywords))
		for _, kw := range family.Keywords {
			words := strings.Fields(kw)
			for i, w := range words {
				words[i] = regexp.QuoteMeta(w)
			}
			if len(words) > 0 {
				alternatives = append(alternatives, strings.Join(words, `\s+`))
			}
		}
		if len(alternatives) == 0 {
			continue
		}
		re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(alternatives, "|") + `)s?\b`)
		if err != nil {
			return nil, fmt.Errorf("policy type %q: %w", family.Name, err)
		}
		e.policyTypes = append(e.policyTypes, typeMatcher{label: family.Name, re: re})
	}

	return e, nil
}

// Default returns an extractor for DefaultRules.
func Default() *Extractor {
	e, err := New(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("entities: default rules: %v", err))
	}
	return e
}

// Rules returns the table the extractor was built from.
func (e *Extractor) Rules() Rules {
	return e.rules
}

// Extract returns every category that has a validated value in text.
func (e *Extractor) Extract(text string) domain.Entities {
	out := make(domain.Entities)
	if strings.TrimSpace(text) == "" {
		return out
	}

	out.SetIfAbsent(domain.EntityPolicyNumber, e.policyNumber(text))
	out.SetIfAbsent(domain.EntityInsuredName, e.insuredName(text))

	dates := e.dateSpans(text)
	for _, d := range dates {
		if category := classify(text, d.start, d.end, e.rules.DateFamilies, e.rules.DateContextWindow); category != "" {
			out.SetIfAbsent(domain.EntityCategory(category), d.value)
		}
	}

	for _, m := range e.amounts(text, dates) {
		if category := classify(text, m.start, m.end, e.rules.AmountFamilies, e.rules.AmountContextWindow); category != "" {
			out.SetIfAbsent(domain.EntityCategory(category), m.value)
		}
	}

	out.SetIfAbsent(domain.EntityPolicyType, e.policyType(text))
	return out
}

// span is a located candidate value.
type span struct {
	value      string
	start, end int
}

func (s span) contains(o span) bool {
	return s.start <= o.start && o.end <= s.end && s.end-s.start > o.end-o.start
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// policyNumber returns the best policy number candidate, upper-cased.
// Candidates inside a longer candidate are dropped, then the first one with
// a context keyword wins, else the first valid one.
func (e *Extractor) policyNumber(text string) string {
	var candidates []span
	for _, re := range e.policyPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := firstGroup(m)
			value := strings.TrimRight(text[start:end], "-")
			end = start + len(value)
			if !e.validPolicyNumber(value) {
				continue
			}
			candidates = append(candidates, span{value: value, start: start, end: end})
		}
	}

	candidates = dropContained(candidates)
	if len(candidates) == 0 {
		return ""
	}

	for _, c := range candidates {
		ctx := strings.ToLower(window(text, c.start, c.end, e.rules.PolicyContextWindow))
		for _, kw := range e.rules.PolicyContextKeywords {
			if strings.Contains(ctx, kw) {
				return strings.ToUpper(c.value)
			}
		}
	}
	return strings.ToUpper(candidates[0].value)
}

// validPolicyNumber rejects common words, dates, bare amounts and values
// without any digit.
func (e *Extractor) validPolicyNumber(v string) bool {
	v = strings.TrimSpace(v)
	if len(v) < 4 || len(v) > 25 {
		return false
	}
	if e.commonWords[strings.ToLower(v)] {
		return false
	}
	if !strings.ContainsAny(v, "0123456789") {
		return false
	}
	if datePrefix.MatchString(v) || bareAmount.MatchString(v) {
		return false
	}
	return true
}

// insuredName returns the first labelled name that validates.
func (e *Extractor) insuredName(text string) string {
	for _, re := range e.namePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			name := e.trimStopWords(m[1])
			if e.validName(name) {
				return name
			}
		}
	}
	return ""
}

// trimStopWords cuts a captured name at the first label word that follows it.
func (e *Extractor) trimStopWords(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		if i > 0 && e.stopWords[strings.ToLower(strings.Trim(w, ".,:"))] {
			words = words[:i]
			break
		}
	}
	return strings.TrimRight(strings.Join(words, " "), ".,- ")
}

func (e *Extractor) validName(name string) bool {
	if len(name) < 2 || len(name) > 50 {
		return false
	}
	lower := strings.ToLower(name)
	for _, term := range e.rules.NameForbiddenTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	if datePrefix.MatchString(name) || onlyDigits.MatchString(name) || bareAmount.MatchString(name) {
		return false
	}
	words := strings.Fields(name)
	if len(words) >= 2 {
		for _, w := range words {
			if !startsUpper(w) {
				return false
			}
		}
	}
	return true
}

// dateSpans returns date candidates in text order; a date matched by several
// patterns is kept once.
func (e *Extractor) dateSpans(text string) []span {
	var found []span
	for _, re := range e.datePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			found = append(found, span{value: text[loc[0]:loc[1]], start: loc[0], end: loc[1]})
		}
	}
	return dedupeOverlaps(found)
}

// amounts returns money candidates that carry a currency symbol, thousands
// separators or cents, skipping numbers that belong to dates or identifiers.
func (e *Extractor) amounts(text string, dates []span) []span {
	var out []span
	for _, m := range moneyAmount.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		symbol := ""
		if m[2] >= 0 {
			symbol = text[m[2]:m[3]]
		} else {
			start = m[4]
		}
		number := text[m[4]:m[5]]

		if symbol == "" && !strings.ContainsAny(number, ",.") {
			continue
		}
		if !isolated(text, start, end) {
			continue
		}
		candidate := span{value: FormatAmount(symbol, number), start: start, end: end}
		if overlapsAny(candidate, dates) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// policyType returns the label of the first family with a whole-word match.
func (e *Extractor) policyType(text string) string {
	for _, t := range e.policyTypes {
		if t.re.MatchString(text) {
			return t.label
		}
	}
	return ""
}

// classify picks the family whose keyword sits closest to [start, end).
// Keywords before the value beat keywords after it, and ties go to the
// earlier family. It returns "" when no keyword is in range.
func classify(text string, start, end int, families []domain.KeywordFamily, size int) string {
	before := strings.ToLower(leading(text, start, size))
	after := strings.ToLower(trailing(text, end, size))

	type hit struct {
		family int
		before bool
		dist   int
	}
	better := func(a, b hit) bool {
		if a.before != b.before {
			return a.before
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.family < b.family
	}

	var best *hit
	consider := func(h hit) {
		if best == nil || better(h, *best) {
			best = &h
		}
	}
	for fi, f := range families {
		for _, kw := range f.Keywords {
			if i := strings.LastIndex(before, kw); i >= 0 {
				consider(hit{family: fi, before: true, dist: len(before) - (i + len(kw))})
			}
			if i := strings.Index(after, kw); i >= 0 {
				consider(hit{family: fi, dist: i})
			}
		}
	}
	if best == nil {
		return ""
	}
	return families[best.family].Name
}

// window returns [start, end) widened by up to size bytes on each side.
func window(text string, start, end, size int) string {
	return leading(text, start, size) + text[start:end] + trailing(text, end, size)
}

// leading returns up to size bytes ending at pos, starting on a rune boundary.
func leading(text string, pos, size int) string {
	lo := pos - size
	if lo < 0 {
		lo = 0
	}
	for lo < pos && !utf8.RuneStart(text[lo]) {
		lo++
	}
	return text[lo:pos]
}

// trailing returns up to size bytes starting at pos, ending on a rune boundary.
func trailing(text string, pos, size int) string {
	hi := pos + size
	if hi > len(text) {
		hi = len(text)
	}
	for hi > pos && hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi--
	}
	return text[pos:hi]
}

// firstGroup returns the bounds of the first non-empty capture group, or of
// the whole match when there is none.
func firstGroup(m []int) (int, int) {
	for g := 2; g+1 < len(m); g += 2 {
		if m[g] >= 0 && m[g+1] > m[g] {
			return m[g], m[g+1]
		}
	}
	return m[0], m[1]
}

// dropContained removes candidates lying inside a longer candidate and keeps
// the original order otherwise.
func dropContained(in []span) []span {
	out := make([]span, 0, len(in))
	for i, c := range in {
		inside := false
		for j, o := range in {
			if i == j {
				continue
			}
			if o.contains(c) || (o.start == c.start && o.end == c.end && j < i) {
				inside = true
				break
			}
		}
		if !inside {
			out = append(out, c)
		}
	}
	return out
}

// dedupeOverlaps sorts spans by position and keeps the first of any overlapping run.
func dedupeOverlaps(in []span) []span {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].start != in[j].start {
			return in[i].start < in[j].start
		}
		return in[i].end > in[j].end
	})
	var out []span
	for _, s := range in {
		if len(out) > 0 && out[len(out)-1].overlaps(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func overlapsAny(s span, others []span) bool {
	for _, o := range others {
		if s.overlaps(o) {
			return true
		}
	}
	return false
}

// isolated reports whether [start, end) is not glued to a word, identifier,
// date or larger number.
func isolated(text string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) || strings.ContainsRune("-/.,_", prev) {
			return false
		}
	}
	if end < len(text) {
		next, size := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(next) || unicode.IsDigit(next) || strings.ContainsRune("-/%_", next) {
			return false
		}
		if next == '.' || next == ',' {
			after, _ := utf8.DecodeRuneInString(text[end+size:])
			if unicode.IsDigit(after) {
				return false
			}
		}
	}
	return true
}

func startsUpper(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

func lowerSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return set
}

func compileAll(kind string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", domain.ErrInvalidInput, kind, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
