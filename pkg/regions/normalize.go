package regions

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorRE     = regexp.MustCompile(`[\s\-_/]+`)
	parentheticalRE = regexp.MustCompile(`\s*\([^)]*\)\s*`)

	// foldDiacritics strips combining marks so "Αττική" and "Αττικη"
	// normalize identically.
	foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize lowercases a free-form place name, collapses separators and
// whitespace, drops parenthetical qualifiers, and folds diacritics. Both the
// alias matcher and the city-map lookup key use this form.
func Normalize(value string) string {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	cleaned = separatorRE.ReplaceAllString(cleaned, " ")
	cleaned = parentheticalRE.ReplaceAllString(cleaned, " ")
	if folded, _, err := transform.String(foldDiacritics, cleaned); err == nil {
		cleaned = folded
	}
	return strings.Join(strings.Fields(cleaned), " ")
}

// Administrative decorations seen around city names in geocoding output.
var (
	cityPrefixes = []string{
		"municipality of ",
		"municipal unit of ",
		"city of ",
		"region of ",
		"prefecture of ",
		"province of ",
		"county of ",
		"district of ",
		"metropolitan area of ",
	}

	citySuffixes = []string{
		" municipality",
		" municipal unit",
		" city",
		" region",
		" prefecture",
		" province",
		" county",
		" district",
	}
)

// CleanCity derives a bare city name from a value that may carry
// administrative prefixes/suffixes, a comma-separated tail, or parenthetical
// qualifiers. Casing of the surviving text is preserved.
func CleanCity(value string) string {
	cleaned := strings.Join(strings.Fields(value), " ")

	if i := strings.Index(cleaned, ","); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[:i])
	}

	cleaned = parentheticalRE.ReplaceAllString(cleaned, " ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	lower := strings.ToLower(cleaned)
	for _, prefix := range cityPrefixes {
		if strings.HasPrefix(lower, prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
			break
		}
	}

	lower = strings.ToLower(cleaned)
	for _, suffix := range citySuffixes {
		if strings.HasSuffix(lower, suffix) {
			cleaned = strings.TrimSpace(cleaned[:len(cleaned)-len(suffix)])
			break
		}
	}

	return cleaned
}
