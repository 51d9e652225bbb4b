package autocomplete

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"varologs/internal/media"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json|JSON)?[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?```$")
)

// stripFence removes one optional leading code fence (optionally tagged json)
// and one trailing fence. Nothing else is extracted from prose.
func stripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = leadingFence.ReplaceAllString(trimmed, "")
	trimmed = trailingFence.ReplaceAllString(trimmed, "")
	return strings.TrimSpace(trimmed)
}

var requiredFields = []string{"title", "year", "creator", "genre", "synopsis"}

// decodeMetadata parses text as a single JSON object and enforces the
// schema. Unknown keys are ignored. Extended fields are checked and kept only
// when extended is true.
func decodeMetadata(text string, extended bool) (*Metadata, Stage, error) {
	body := stripFence(text)
	if body == "" {
		return nil, StageEmpty, errEmptyResponse
	}
	if body[0] != '{' {
		return nil, StageParse, errNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, StageParse, fmt.Errorf("decode json: %w", err)
	}
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return nil, StageSchema, &schemaError{field: name, reason: "is missing"}
		}
	}

	var meta Metadata
	title, err := stringOrNull(fields, "title")
	if err != nil {
		return nil, StageSchema, err
	}
	if title == nil || strings.TrimSpace(*title) == "" {
		return nil, StageSchema, &schemaError{field: "title", reason: "must be a non-empty string"}
	}
	meta.Title = *title
	if meta.Year, err = intOrNull(fields, "year"); err != nil {
		return nil, StageSchema, err
	}
	if meta.Creator, err = stringOrNull(fields, "creator"); err != nil {
		return nil, StageSchema, err
	}
	if meta.Genre, err = stringOrNull(fields, "genre"); err != nil {
		return nil, StageSchema, err
	}
	if meta.Synopsis, err = stringOrNull(fields, "synopsis"); err != nil {
		return nil, StageSchema, err
	}
	if extended {
		if err := decodeExtended(fields, &meta); err != nil {
			return nil, StageSchema, err
		}
	}
	return &meta, "", nil
}

func decodeExtended(fields map[string]json.RawMessage, meta *Metadata) error {
	strTargets := map[string]**string{
		media.Platform.Name:  &meta.Platform,
		media.Developer.Name: &meta.Developer,
		media.Publisher.Name: &meta.Publisher,
		media.ISBN.Name:      &meta.ISBN,
	}
	intTargets := map[string]**int{
		media.DurationMin.Name: &meta.DurationMin,
		media.Pages.Name:       &meta.Pages,
		media.Episodes.Name:    &meta.Episodes,
		media.Seasons.Name:     &meta.Seasons,
	}
	for _, field := range media.ExtendedFields {
		if _, ok := fields[field.Name]; !ok {
			continue
		}
		var err error
		switch field.Kind {
		case media.KindInteger:
			*intTargets[field.Name], err = intOrNull(fields, field.Name)
		default:
			*strTargets[field.Name], err = stringOrNull(fields, field.Name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func stringOrNull(fields map[string]json.RawMessage, name string) (*string, error) {
	raw := fields[name]
	if isNull(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return nil, &schemaError{field: name, reason: "must be a string or null"}
	}
	var value string
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, &schemaError{field: name, reason: "must be a string or null"}
	}
	return &value, nil
}

func intOrNull(fields map[string]json.RawMessage, name string) (*int, error) {
	raw := fields[name]
	if isNull(raw) {
		return nil, nil
	}
	value, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	if err != nil {
		return nil, &schemaError{field: name, reason: "must be an integer or null"}
	}
	return &value, nil
}
