// Package covers finds cover art for catalog items.
//
// Books and manga are looked up on OpenLibrary; movies, series and anime on
// TMDB when an API key is configured. Other types have no public source and
// always get the per-type placeholder. Every result also carries a DuckDuckGo
// image search link so the user can pick a cover by hand.
package covers
