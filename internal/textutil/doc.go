// Package textutil provides small text helpers shared by the generative
// backends and the autocomplete engine: whitespace folding, bounded snippets
// for logs and error messages, and first-non-blank selection.
package textutil
