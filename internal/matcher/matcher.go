// Package matcher checks free-text guesses against catalog entries.
package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hrygo/musclequiz/internal/catalog"
)

// Normalize lowercases s, strips diacritics and collapses every run of
// non-alphanumeric characters into a single space.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSpace := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Candidates returns the normalized answers accepted for e.
func Candidates(e catalog.Entry) map[string]struct{} {
	out := make(map[string]struct{}, len(e.AcceptedAnswers)+2)
	add := func(s string) {
		if n := Normalize(s); n != "" {
			out[n] = struct{}{}
		}
	}
	add(e.DisplayName)
	add(e.ID)
	for _, a := range e.AcceptedAnswers {
		add(a)
	}
	return out
}

// IsMatch reports whether input names e. An input that normalizes to the
// empty string never matches.
func IsMatch(input string, e catalog.Entry) bool {
	n := Normalize(input)
	if n == "" {
		return false
	}
	_, ok := Candidates(e)[n]
	return ok
}
