package resolve

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var parenthetical = regexp.MustCompile(`\(.*\)`)

var separators = strings.NewReplacer("'", " ", "’", " ", "-", " ")

// Normalize prepares a mention or label for comparison: NFC, language-aware
// lower-casing, parenthetical remarks removed, apostrophes and hyphens
// turned into spaces, surrounding space trimmed.
func Normalize(text, languageCode string) string {
	tag, err := language.Parse(languageCode)
	if err != nil {
		tag = language.Und
	}

	text = norm.NFC.String(text)
	text = cases.Lower(tag).String(text)
	text = parenthetical.ReplaceAllString(text, "")
	text = separators.Replace(text)
	return strings.TrimSpace(text)
}
