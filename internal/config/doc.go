// Package config loads, normalizes, and validates the VaroLogs TOML
// configuration.
//
// Load searches an explicit path, then ~/.config/varologs/config.toml, then
// ./varologs.toml. Missing files fall back to Default(). Paths are expanded
// (including "~"), DB_PATH, PORT and TMDB_API_KEY override their file
// settings, and Validate rejects unusable AI cascade or server settings
// before anything starts.
package config
