package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains storage locations and the API bind address.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	DatabasePath string `toml:"database_path"`
	FrontendDir  string `toml:"frontend_dir"`
	LogDir       string `toml:"log_dir"`
	APIBind      string `toml:"api_bind"`
}

// AI contains the generative backend and autocomplete cascade settings.
type AI struct {
	// Provider selects the backend: "gemini" (default) or "openrouter".
	Provider              string   `toml:"provider"`
	BaseURL               string   `toml:"base_url"`
	Models                []string `toml:"models"`
	Temperature           float64  `toml:"temperature"`
	MaxOutputTokens       int      `toml:"max_output_tokens"`
	AttemptTimeoutSeconds int      `toml:"attempt_timeout_seconds"`
	PromptLanguage        string   `toml:"prompt_language"`
	// Schema is "basic" (five core fields) or "extended" (adds type-specific fields).
	Schema     string `toml:"schema"`
	KeyEnv     string `toml:"key_env"`
	PersistKey bool   `toml:"persist_key"`
	Referer    string `toml:"referer"`
	Title      string `toml:"title"`
}

// Covers contains configuration for cover art lookup.
type Covers struct {
	Enabled            bool   `toml:"enabled"`
	OpenLibraryBaseURL string `toml:"openlibrary_base_url"`
	TMDBAPIKey         string `toml:"tmdb_api_key"`
	TMDBBaseURL        string `toml:"tmdb_base_url"`
	TMDBLanguage       string `toml:"tmdb_language"`
	RequestsPerMinute  int    `toml:"requests_per_minute"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

// Server contains HTTP surface tuning.
type Server struct {
	AIRequestsPerMinute int      `toml:"ai_requests_per_minute"`
	CORSOrigins         []string `toml:"cors_origins"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for VaroLogs.
//
// Configuration sections by subsystem:
//   - Paths: data directory, SQLite database, frontend build and API bind address
//   - AI: generative backend and model cascade for metadata autocompletion
//   - Covers: OpenLibrary/TMDB cover lookup
//   - Server: rate limits and CORS for the HTTP API
//   - Logging: log format and level
//
// The AI API key is deliberately absent; it is discovered from the
// environment or the settings store at runtime.
type Config struct {
	Paths   Paths   `toml:"paths"`
	AI      AI      `toml:"ai"`
	Covers  Covers  `toml:"covers"`
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory (and the database's parent
// when it lives elsewhere). The frontend directory is never created; it is
// served only when a build exists.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, filepath.Dir(c.Paths.DatabasePath)}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SettingsPath returns the JSON settings file that persists runtime choices
// such as the AI key.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Paths.DataDir, settingsFileName)
}

// LogFilePath returns the log file path, or "" when file logging is off.
func (c *Config) LogFilePath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "varologs.log")
}

// FrontendAvailable reports whether a built frontend exists to be served.
func (c *Config) FrontendAvailable() bool {
	if c.Paths.FrontendDir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(c.Paths.FrontendDir, "index.html"))
	return err == nil && !info.IsDir()
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
