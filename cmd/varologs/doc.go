// Package main hosts the VaroLogs CLI entrypoint and command graph.
//
// The Cobra command tree runs the HTTP server, scaffolds and validates
// configuration, manages the AI key, runs one-off autocomplete lookups, and
// prints catalog summaries straight from the SQLite database. Configuration is
// resolved once per invocation; subcommands stay thin and delegate to the
// internal packages.
package main
