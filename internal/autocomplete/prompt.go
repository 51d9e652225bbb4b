package autocomplete

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"varologs/internal/media"
	"varologs/internal/textutil"
)

type promptText struct {
	intro      string
	instruct   string
	object     string
	extraIntro string
	intHint    string
	nullRule   string
	coverAsk   string
	unknownYr  string
}

var promptsByLocale = map[string]promptText{
	"es": {
		intro:    "Busca información sobre \"%s\" que es un/una %s.",
		instruct: "Responde ÚNICAMENTE con un objeto JSON válido (sin markdown, sin ```), con esta estructura exacta:",
		object: `{
  "title": "título oficial exacto",
  "year": 2024,
  "creator": "director/desarrollador/autor/artista principal",
  "genre": "género principal",
  "synopsis": "sinopsis breve en español, máximo 3 frases"
}`,
		extraIntro: "Incluye además estos campos en el mismo objeto:",
		intHint:    "entero",
		nullRule:   "Si no encuentras información exacta, usa null en los campos desconocidos.",
		coverAsk:   "Para buscar la portada/carátula de \"%s\" (%s, %s), sugiere el mejor término de búsqueda en inglés. Responde SOLO con el término, sin explicaciones.",
		unknownYr:  "año desconocido",
	},
	"en": {
		intro:    "Find information about \"%s\", which is a %s.",
		instruct: "Reply ONLY with a valid JSON object (no markdown, no ```), using exactly this structure:",
		object: `{
  "title": "exact official title",
  "year": 2024,
  "creator": "main director/developer/author/artist",
  "genre": "main genre",
  "synopsis": "short synopsis in English, at most 3 sentences"
}`,
		extraIntro: "Also include these fields in the same object:",
		intHint:    "integer",
		nullRule:   "If you cannot find exact information, use null for unknown fields.",
		coverAsk:   "To find the cover art for \"%s\" (%s, %s), suggest the best English image search term. Reply ONLY with the term, no explanations.",
		unknownYr:  "unknown year",
	},
}

func textFor(tag language.Tag) promptText {
	base, _ := tag.Base()
	if p, ok := promptsByLocale[base.String()]; ok {
		return p
	}
	return promptsByLocale["es"]
}

// buildPrompt renders the metadata prompt for one request. The same text is
// sent to every model in the cascade.
func buildPrompt(req Request, tag language.Tag, extended bool) string {
	p := textFor(tag)
	var b strings.Builder
	fmt.Fprintf(&b, p.intro, quoteSafe(req.Query), req.Type.Noun(tag))
	b.WriteString("\n\n")
	b.WriteString(p.instruct)
	b.WriteByte('\n')
	b.WriteString(p.object)
	b.WriteString("\n\n")
	if extended {
		if fields := req.Type.Fields(); len(fields) > 0 {
			b.WriteString(p.extraIntro)
			b.WriteByte('\n')
			for _, field := range fields {
				fmt.Fprintf(&b, "- \"%s\": %s", field.Name, fieldHint(field, tag))
				if field.Kind == media.KindInteger {
					fmt.Fprintf(&b, " (%s)", p.intHint)
				}
				b.WriteByte('\n')
			}
			b.WriteByte('\n')
		}
	}
	b.WriteString(p.nullRule)
	return b.String()
}

func buildCoverPrompt(title string, t media.Type, year *int, tag language.Tag) string {
	p := textFor(tag)
	yearText := p.unknownYr
	if year != nil {
		yearText = strconv.Itoa(*year)
	}
	return fmt.Sprintf(p.coverAsk, quoteSafe(title), string(t), yearText)
}

func fieldHint(field media.Field, tag language.Tag) string {
	if base, _ := tag.Base(); base.String() == "es" {
		return field.HintES
	}
	return field.HintEN
}

// quoteSafe keeps user text from closing the quoted span in the prompt.
func quoteSafe(value string) string {
	return strings.ReplaceAll(textutil.CollapseSpace(value), `"`, "'")
}

// fallbackCoverQuery is the heuristic image search used without a model.
func fallbackCoverQuery(title string, t media.Type, year *int) string {
	parts := []string{title}
	if year != nil {
		parts = append(parts, strconv.Itoa(*year))
	}
	parts = append(parts, string(t), "cover")
	return textutil.CollapseSpace(strings.Join(parts, " "))
}
