package textprep

import (
	"regexp"
	"strings"
)

// langAliases maps short or alternate language codes to canonical names.
// The table is static reference data; extend it here, not at runtime.
var langAliases = map[string]string{
	"en":         "english",
	"eng":        "english",
	"es":         "spanish",
	"spa":        "spanish",
	"castellano": "spanish",
}

// spanishMarkerRegex matches characters that are strong indicators of
// Spanish prose: accented lowercase vowels, ñ, and inverted punctuation.
var spanishMarkerRegex = regexp.MustCompile(`[áéíóúñ¡¿]`)

// NormalizeLanguage resolves a language code or alias to its canonical name.
// Lookup is case- and whitespace-insensitive; unrecognized values pass
// through lowercased and trimmed.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if canonical, ok := langAliases[lang]; ok {
		return canonical
	}
	return lang
}

// DetectHint classifies text as "spanish" or "english" by counting Spanish
// marker characters. Two or more markers mean Spanish.
//
// This is a coarse binary classifier, not language identification. Adding
// languages here requires a design change; a third target language never
// matches the hint and therefore always translates.
func DetectHint(text string) string {
	markers := spanishMarkerRegex.FindAllString(strings.ToLower(text), -1)
	if len(markers) >= 2 {
		return "spanish"
	}
	return "english"
}
