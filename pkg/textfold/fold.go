// Package textfold folds Turkish text to plain lowercase ASCII letters so
// labels and free text can be matched without caring about case or
// diacritics.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks returns a fresh transformer dropping combining marks. Chains
// are not safe for concurrent use.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Fold lowercases s, drops diacritics and collapses runs of whitespace:
// "TAKSİT  Sayısı" and "taksit sayisi" both become "taksit sayisi".
func Fold(s string) string {
	folded, _, err := transform.String(stripMarks(), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "ı", "i")
	return Collapse(folded)
}

// Collapse trims s and replaces every run of whitespace with one space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
