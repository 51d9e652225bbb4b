package autocomplete

import (
	"strings"
	"testing"

	"golang.org/x/text/language"

	"varologs/internal/media"
)

func TestBuildPromptSpanish(t *testing.T) {
	prompt := buildPrompt(Request{Query: `The "Last" of Us`, Type: media.Game}, language.Spanish, false)
	for _, want := range []string{
		`Busca información sobre "The 'Last' of Us" que es un/una videojuego.`,
		"Responde ÚNICAMENTE con un objeto JSON válido",
		`"synopsis": "sinopsis breve en español, máximo 3 frases"`,
		"usa null en los campos desconocidos",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, `"platform"`) {
		t.Error("basic prompt should not list extended fields")
	}
}

func TestBuildPromptExtendedEnglish(t *testing.T) {
	prompt := buildPrompt(Request{Query: "Cowboy Bebop", Type: media.Anime}, language.English, true)
	for _, want := range []string{"which is a anime", `"episodes": episode count (integer)`, `"duration_min"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestFallbackCoverQuery(t *testing.T) {
	year := 2007
	if got := fallbackCoverQuery("  The   Witcher ", media.Game, &year); got != "The Witcher 2007 game cover" {
		t.Fatalf("got %q", got)
	}
}
