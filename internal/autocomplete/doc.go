// Package autocomplete resolves free-text media queries into structured
// metadata through an ordered cascade of generative models.
//
// A Resolver captures the current client handle once per resolution, sends
// the same localized prompt to each model in configured order, and returns
// the first response that decodes as a single JSON object matching the
// metadata schema. Each model gets exactly one attempt under its own
// timeout; transport errors, empty replies, unparseable text and schema
// violations all advance the cascade. When every model fails the caller
// receives an *ExhaustedCascadeError listing each AttemptFailure, which the
// HTTP layer turns into a manual-entry fallback.
//
// The resolver keeps no state between calls: no caching, no breaker, no
// reordering. Telemetry flows through the Observer interface.
package autocomplete
