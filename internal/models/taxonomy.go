package models

import (
	"unicode"
	"unicode/utf8"
)

// SubjectOther is the category assigned to candidates that fit nothing in
// the taxonomy. Encoded as index -1 in labeling keyboard payloads.
const SubjectOther = "other"

// Taxonomy is the fixed list of canonical category names, sorted. Keyboard
// payloads encode positions into this slice, so the order must not change
// while the process is running.
var Taxonomy = []string{
	"art",
	"books",
	"business",
	"games",
	"humor",
	"music",
	"news",
	"science",
	"sport",
	"travel",
}

// SubjectByIndex resolves a labeling keyboard index to a category name.
// Index -1 maps to SubjectOther. Out-of-range indices also fall back to
// SubjectOther rather than panicking on a malformed payload.
func SubjectByIndex(i int) string {
	if i < 0 || i >= len(Taxonomy) {
		return SubjectOther
	}
	return Taxonomy[i]
}

// Capitalize upper-cases the first rune of a label for display.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
