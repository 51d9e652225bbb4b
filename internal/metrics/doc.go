// Package metrics exposes Prometheus collectors for the autocomplete cascade
// and the HTTP API.
package metrics
