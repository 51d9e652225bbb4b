// Package daemon owns the long-running VaroLogs HTTP process.
//
// It holds a flock-based instance lock in the data directory so two servers
// never share one SQLite database, binds the API listener, and shuts the
// server down gracefully when the run context ends. Request handling lives in
// the api package; component wiring lives in daemonrun.
package daemon
