// Package preflight provides readiness checks for the paths and external
// services VaroLogs depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs each failure as a warning.
//   - The CLI "varologs status" command renders the results as a table.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
