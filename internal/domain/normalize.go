package domain

import "strings"

// NormalizeText turns a raw word-list line or dump headword into the form
// stored in the word column: lowercased, a leading byte-order mark dropped,
// typographic apostrophes folded to ASCII and every whitespace run (tabs and
// no-break spaces included) collapsed to one space.
//
// Diacritics and hyphens are preserved.
func NormalizeText(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = apostrophes.Replace(text)
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

var apostrophes = strings.NewReplacer("\u2019", "'", "\u2018", "'", "\u02bc", "'")
