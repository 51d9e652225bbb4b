package autocomplete

import (
	"errors"
	"testing"
)

func TestStripFence(t *testing.T) {
	cases := map[string]string{
		"{}":                     "{}",
		"```json\n{}\n```":       "{}",
		"```JSON\r\n{}\r\n```":   "{}",
		"```\n{}\n```":           "{}",
		"  ```json {} ```  ":     "{}",
		"Here you go: ```{}```": "Here you go: ```{}",
	}
	for in, want := range cases {
		if got := stripFence(in); got != want {
			t.Errorf("stripFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeMetadataStages(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		stage Stage
	}{
		{"empty", "", StageEmpty},
		{"fence only", "```json\n```", StageEmpty},
		{"prose", "Dune is a novel by Frank Herbert.", StageParse},
		{"prose around json", `Sure! {"title":"Dune"}`, StageParse},
		{"array", `[{"title":"Dune"}]`, StageParse},
		{"truncated", `{"title":"Dune","year":19`, StageParse},
		{"missing field", `{"title":"Dune","year":1965,"creator":null,"genre":null}`, StageSchema},
		{"blank title", `{"title":"  ","year":null,"creator":null,"genre":null,"synopsis":null}`, StageSchema},
		{"null title", `{"title":null,"year":null,"creator":null,"genre":null,"synopsis":null}`, StageSchema},
		{"string year", `{"title":"Dune","year":"1965","creator":null,"genre":null,"synopsis":null}`, StageSchema},
		{"float year", `{"title":"Dune","year":1965.5,"creator":null,"genre":null,"synopsis":null}`, StageSchema},
		{"numeric creator", `{"title":"Dune","year":1965,"creator":7,"genre":null,"synopsis":null}`, StageSchema},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta, stage, err := decodeMetadata(tc.text, false)
			if err == nil {
				t.Fatalf("expected failure, got %+v", meta)
			}
			if stage != tc.stage {
				t.Fatalf("stage = %q, want %q (err %v)", stage, tc.stage, err)
			}
		})
	}
}

func TestDecodeMetadataNullsAndUnknownKeys(t *testing.T) {
	meta, _, err := decodeMetadata(`{"title":"Obscure","year":null,"creator":null,"genre":"Drama","synopsis":null,"rating":9}`, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.Year != nil || meta.Creator != nil || meta.Synopsis != nil {
		t.Fatalf("nulls not preserved: %+v", meta)
	}
	if meta.Genre == nil || *meta.Genre != "Drama" {
		t.Fatalf("genre = %v", meta.Genre)
	}
}

func TestDecodeMetadataExtended(t *testing.T) {
	text := `{"title":"Naruto","year":2002,"creator":"Masashi Kishimoto","genre":"Shōnen","synopsis":null,"episodes":220,"duration_min":23,"isbn":null}`
	meta, _, err := decodeMetadata(text, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.Episodes == nil || *meta.Episodes != 220 || meta.DurationMin == nil || *meta.DurationMin != 23 {
		t.Fatalf("extended ints missing: %+v", meta)
	}
	if meta.ISBN != nil {
		t.Fatalf("isbn should be nil, got %v", *meta.ISBN)
	}

	_, stage, err := decodeMetadata(`{"title":"X","year":null,"creator":null,"genre":null,"synopsis":null,"seasons":"two"}`, true)
	var schemaErr *schemaError
	if stage != StageSchema || !errors.As(err, &schemaErr) || schemaErr.field != "seasons" {
		t.Fatalf("expected seasons schema error, got %q %v", stage, err)
	}
}
