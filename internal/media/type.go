// Package media defines the catalog's media types and the per-type facts the
// rest of the service keys off: prompt nouns, extended metadata fields, and
// placeholder artwork.
package media

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"varologs/internal/services"
)

// Type identifies a catalog media category.
type Type string

const (
	Movie   Type = "movie"
	Series  Type = "series"
	Game    Type = "game"
	Book    Type = "book"
	Anime   Type = "anime"
	Manga   Type = "manga"
	Music   Type = "music"
	Podcast Type = "podcast"
)

// All lists every media type in display order.
var All = []Type{Movie, Series, Game, Book, Anime, Manga, Music, Podcast}

type typeInfo struct {
	nounES string
	nounEN string
	color  string
	icon   string
	fields []Field
}

var catalog = map[Type]typeInfo{
	Movie:   {"película", "movie", "4a5568", "🎬", []Field{DurationMin}},
	Series:  {"serie de televisión", "TV series", "5a67d8", "📺", []Field{Episodes, Seasons}},
	Game:    {"videojuego", "video game", "48bb78", "🎮", []Field{Platform, Developer, Publisher}},
	Book:    {"libro", "book", "ed8936", "📚", []Field{Pages, Publisher, ISBN}},
	Anime:   {"anime", "anime", "ed64a6", "🎌", []Field{Episodes, DurationMin}},
	Manga:   {"manga", "manga", "f56565", "📖", []Field{Pages, Publisher}},
	Music:   {"álbum de música", "music album", "9f7aea", "🎵", []Field{DurationMin}},
	Podcast: {"podcast", "podcast", "38b2ac", "🎙️", []Field{Episodes}},
}

const (
	defaultColor = "718096"
	defaultIcon  = "📋"
)

// Parse converts user input into a Type.
func Parse(value string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(value)))
	if !t.Valid() {
		return "", services.Wrap(services.ErrValidation, "media", "parse type", fmt.Sprintf("unknown media type %q", value), nil)
	}
	return t, nil
}

// Valid reports whether t is one of the known media types.
func (t Type) Valid() bool {
	_, ok := catalog[t]
	return ok
}

func (t Type) String() string { return string(t) }

// Noun returns the localized noun used when describing t in a prompt.
// Only Spanish has its own wording; every other locale uses English.
func (t Type) Noun(tag language.Tag) string {
	info, ok := catalog[t]
	if !ok {
		return string(t)
	}
	if base, _ := tag.Base(); base.String() == "es" {
		return info.nounES
	}
	return info.nounEN
}

// Label returns the noun title-cased for display, e.g. "Video Game".
func (t Type) Label(tag language.Tag) string {
	return cases.Title(tag).String(t.Noun(tag))
}

// Fields returns the optional metadata fields meaningful for t.
func (t Type) Fields() []Field {
	info := catalog[t]
	out := make([]Field, len(info.fields))
	copy(out, info.fields)
	return out
}

// PlaceholderColor returns the hex background used for generated artwork.
func (t Type) PlaceholderColor() string {
	if info, ok := catalog[t]; ok {
		return info.color
	}
	return defaultColor
}

// Icon returns the emoji shown on placeholder artwork.
func (t Type) Icon() string {
	if info, ok := catalog[t]; ok {
		return info.icon
	}
	return defaultIcon
}

// Names returns the string form of every type, for validation tags and help text.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = string(t)
	}
	return out
}
