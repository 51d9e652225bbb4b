// Package api serves the VaroLogs HTTP surface: catalog CRUD, AI
// autocomplete with manual-entry fallback, cover lookup, key configuration,
// health, metrics and the single-page frontend.
package api
