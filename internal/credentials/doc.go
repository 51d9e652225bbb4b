// Package credentials owns the lifetime of the generative-service client.
//
// A Manager lazily discovers an API key on first use (environment variable
// first, then the JSON settings store) and builds a Handle through a Factory.
// Configure swaps in a new handle at runtime: build, persist, swap, export.
// Handles live behind an atomic pointer, so an in-flight resolution keeps
// the handle it captured while later resolutions see the replacement.
package credentials
