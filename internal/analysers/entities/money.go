package entities

import "strings"

// FormatAmount renders a matched amount with thousands separators.
// Cents are kept when the source shows them, so "1200.00" becomes
// "$1,200.00" and "1200" becomes "$1,200". An empty symbol defaults to "$".
func FormatAmount(symbol, number string) string {
	if symbol == "" {
		symbol = "$"
	}

	digits := strings.ReplaceAll(number, ",", "")
	whole, cents, hasCents := strings.Cut(digits, ".")

	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}

	var b strings.Builder
	b.WriteString(symbol)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasCents {
		b.WriteByte('.')
		b.WriteString(cents)
	}
	return b.String()
}
