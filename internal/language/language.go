package language

import (
	"strings"

	"golang.org/x/text/language"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"es", "spa", "Spanish", []string{"spanish", "español", "espanol", "castellano"}},
	{"en", "eng", "English", []string{"english", "inglés", "ingles"}},
}

// Supported lists the prompt locales in preference order. The first entry is
// the fallback when nothing matches.
var Supported = []language.Tag{language.Spanish, language.English}

var matcher = language.NewMatcher(Supported)

var (
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode3 = make(map[string]*entry, len(languages))
	byWord = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		byCode3[e.code3] = e
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

// Match resolves a configured language preference ("es", "spa", "Spanish",
// "en-GB", ...) to one of the Supported prompt locales. Unknown or empty input
// falls back to Spanish.
func Match(pref string) language.Tag {
	pref = strings.ToLower(strings.TrimSpace(pref))
	if pref == "" {
		return Supported[0]
	}
	if e, ok := byCode3[pref]; ok {
		pref = e.code2
	} else if e, ok := byWord[pref]; ok {
		pref = e.code2
	}
	tag, err := language.Parse(pref)
	if err != nil {
		return Supported[0]
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Supported[0]
	}
	return Supported[index]
}

// IsSpanish reports whether tag resolves to the Spanish prompt locale.
func IsSpanish(tag language.Tag) bool {
	base, _ := tag.Base()
	return base.String() == "es"
}

// DisplayName returns a human-readable name for a supported locale.
func DisplayName(tag language.Tag) string {
	base, _ := tag.Base()
	for _, e := range languages {
		if e.code2 == base.String() {
			return e.display
		}
	}
	return strings.ToUpper(base.String())
}
