package autocomplete

import (
	"strings"

	"varologs/internal/media"
	"varologs/internal/services"
	"varologs/internal/textutil"
)

// Request is one free-text lookup for a declared media type.
type Request struct {
	Query string     `json:"query" validate:"required,max=200"`
	Type  media.Type `json:"type" validate:"required,mediatype"`
}

func (r Request) normalize() (Request, error) {
	query := textutil.CollapseSpace(r.Query)
	if query == "" {
		return Request{}, services.Wrap(services.ErrValidation, "autocomplete", "resolve", "query is required", nil)
	}
	if !r.Type.Valid() {
		return Request{}, services.Wrap(services.ErrValidation, "autocomplete", "resolve", "unknown media type "+strings.TrimSpace(string(r.Type)), nil)
	}
	return Request{Query: query, Type: r.Type}, nil
}

// Metadata is a schema-conforming record produced by one model. Optional
// fields are nil when the model answered null or, for extended fields, when
// the field was not requested.
type Metadata struct {
	Title    string  `json:"title"`
	Year     *int    `json:"year"`
	Creator  *string `json:"creator"`
	Genre    *string `json:"genre"`
	Synopsis *string `json:"synopsis"`

	Platform    *string `json:"platform,omitempty"`
	Developer   *string `json:"developer,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	DurationMin *int    `json:"duration_min,omitempty"`
	Pages       *int    `json:"pages,omitempty"`
	Episodes    *int    `json:"episodes,omitempty"`
	Seasons     *int    `json:"seasons,omitempty"`
	ISBN        *string `json:"isbn,omitempty"`

	// Model is the cascade entry that produced this record.
	Model string `json:"model"`
}

// Stage names where in an attempt a candidate failed.
type Stage string

const (
	StageCall   Stage = "call"
	StageEmpty  Stage = "empty"
	StageParse  Stage = "parse"
	StageSchema Stage = "schema"
)

// attempt is the outcome of asking one model. Exactly one of metadata and
// failure is set.
type attempt struct {
	model    string
	raw      string
	metadata *Metadata
	failure  *AttemptFailure
}
