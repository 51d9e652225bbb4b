// Package services defines shared utilities consumed by the catalog API and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers, acting user
//     IDs, and operation names for logging.
//   - Structured error markers plus the Wrap helper so HTTP handlers can map
//     failures to consistent status codes (client error vs unavailable vs
//     internal).
//   - The Generator contract implemented by the generative-model backends in
//     the gemini and llm subpackages.
//
// Use these helpers when wiring new integrations so operational behaviour
// (error handling, observability) stays uniform across the service.
package services
