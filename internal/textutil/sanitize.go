package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeFileChars = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName strips characters that are unsafe in file names.
// Path separators, colons and asterisks become dashes.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(unsafeFileChars.Replace(strings.TrimSpace(name)))
}

// Slug converts free text into a lowercase ASCII token joined by dashes.
// Accents are folded ("Über Café" -> "uber-cafe"). Empty results become fallback.
func Slug(value, fallback string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), value)
	if err != nil {
		folded = value
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return fallback
	}
	return out
}

// Title capitalizes each word of a label for display.
func Title(value string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(value))
}
