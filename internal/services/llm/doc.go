// Package llm provides an OpenRouter (OpenAI-compatible) chat client used as
// an alternative generative backend for metadata autocompletion.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Generate: send one prompt to one model and return its text. This is
// the services.Generator contract.
//
// # Failure Behaviour
//
// Each Generate call issues exactly one HTTP request. HTTP errors, API error
// envelopes and empty completions are returned as services.ErrExternal;
// deadline expiry is returned as services.ErrTimeout. The caller owns the
// fallback policy (the autocomplete cascade moves on to its next model).
//
// # Configuration
//
// Requires an API key. base_url, referer, title and timeout are optional.
package llm
