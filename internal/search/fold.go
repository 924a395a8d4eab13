// Package search provides accent- and case-insensitive matching for
// Portuguese store and supervisor names, so a query like "ambiencia" or
// "joao" finds "Ambiência" and "João".
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks. Transformers carry state, so
// the chain is built per call rather than shared.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// Contains reports whether needle occurs in haystack, ignoring case and
// diacritics.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
