// Package canonical produces the canonical text form every analysis stage
// operates on.
//
// Canonical text contains letters, digits, single ASCII spaces and a small
// allowlist of punctuation and currency symbols. Normalise is idempotent:
// Normalise(Normalise(s)) == Normalise(s).
package canonical

import (
	"strings"
	"unicode"
)

// allowed lists the non-alphanumeric runes kept in canonical text.
const allowed = ".,!?;:()-$€£₹%"

// dashes folds typographic dashes and minus signs to an ASCII hyphen.
var dashes = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
	"﹣", "-", // small hyphen-minus
	"－", "-", // fullwidth hyphen-minus
)

// Normalise converts s to canonical text.
//
// Whitespace runs of any kind collapse to one space, dashes fold to "-",
// runes outside the allowlist are dropped and the result is trimmed.
// Input that is empty or only whitespace yields "".
func Normalise(s string) string {
	if s == "" {
		return ""
	}

	s = dashes.Replace(s)

	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case keep(r):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}

	return b.String()
}

// keep reports whether r survives normalisation.
func keep(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune(allowed, r)
}

// IsCanonical reports whether s is already in canonical form.
func IsCanonical(s string) bool {
	return Normalise(s) == s
}
