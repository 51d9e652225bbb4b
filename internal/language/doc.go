// Package language maps loosely formatted language preferences onto the
// locales the autocomplete prompts are written in.
//
// Configuration accepts ISO 639-1 and 639-2 codes, BCP 47 tags and plain
// language names; everything is funnelled through an x/text matcher so
// regional variants ("es-MX", "en-GB") land on the base prompt locale.
package language
