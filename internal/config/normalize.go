package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAI()
	c.normalizeCovers()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if value, ok := os.LookupEnv("DB_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DatabasePath = value
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = filepath.Join(c.Paths.DataDir, defaultDatabaseName)
	}
	if c.Paths.DatabasePath, err = expandPath(strings.TrimSpace(c.Paths.DatabasePath)); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if c.Paths.FrontendDir, err = expandPath(strings.TrimSpace(c.Paths.FrontendDir)); err != nil {
		return fmt.Errorf("paths.frontend_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if port, ok := os.LookupEnv("PORT"); ok && strings.TrimSpace(port) != "" {
		host, _, err := net.SplitHostPort(c.Paths.APIBind)
		if err != nil {
			host = ""
		}
		c.Paths.APIBind = net.JoinHostPort(host, strings.TrimSpace(port))
	}
	return nil
}

func (c *Config) normalizeAI() {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = defaultAIProvider
	}
	c.AI.BaseURL = strings.TrimSpace(c.AI.BaseURL)
	if c.AI.BaseURL == "" && c.AI.Provider == ProviderOpenRouter {
		c.AI.BaseURL = defaultOpenRouterURL
	}
	c.AI.Models = normalizeModels(c.AI.Models)
	if c.AI.MaxOutputTokens == 0 {
		c.AI.MaxOutputTokens = defaultMaxTokens
	}
	if c.AI.AttemptTimeoutSeconds == 0 {
		c.AI.AttemptTimeoutSeconds = defaultAttemptTimeout
	}
	c.AI.PromptLanguage = strings.TrimSpace(c.AI.PromptLanguage)
	if c.AI.PromptLanguage == "" {
		c.AI.PromptLanguage = defaultPromptLanguage
	}
	c.AI.Schema = strings.ToLower(strings.TrimSpace(c.AI.Schema))
	if c.AI.Schema == "" {
		c.AI.Schema = defaultSchema
	}
	c.AI.KeyEnv = strings.TrimSpace(c.AI.KeyEnv)
	if c.AI.KeyEnv == "" {
		c.AI.KeyEnv = defaultKeyEnv
	}
	c.AI.Referer = strings.TrimSpace(c.AI.Referer)
	c.AI.Title = strings.TrimSpace(c.AI.Title)
}

// normalizeModels trims entries and drops blanks and duplicates while keeping
// the configured order.
func normalizeModels(models []string) []string {
	out := make([]string, 0, len(models))
	seen := make(map[string]struct{}, len(models))
	for _, model := range models {
		model = strings.TrimSpace(model)
		if model == "" {
			continue
		}
		if _, ok := seen[model]; ok {
			continue
		}
		seen[model] = struct{}{}
		out = append(out, model)
	}
	return out
}

func (c *Config) normalizeCovers() {
	if c.Covers.TMDBAPIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.Covers.TMDBAPIKey = strings.TrimSpace(value)
		}
	}
	c.Covers.OpenLibraryBaseURL = strings.TrimRight(strings.TrimSpace(c.Covers.OpenLibraryBaseURL), "/")
	if c.Covers.OpenLibraryBaseURL == "" {
		c.Covers.OpenLibraryBaseURL = defaultOpenLibraryURL
	}
	c.Covers.TMDBBaseURL = strings.TrimRight(strings.TrimSpace(c.Covers.TMDBBaseURL), "/")
	if c.Covers.TMDBBaseURL == "" {
		c.Covers.TMDBBaseURL = defaultTMDBBaseURL
	}
	c.Covers.TMDBLanguage = strings.TrimSpace(c.Covers.TMDBLanguage)
	if c.Covers.TMDBLanguage == "" {
		c.Covers.TMDBLanguage = defaultTMDBLanguage
	}
	if c.Covers.RequestsPerMinute == 0 {
		c.Covers.RequestsPerMinute = defaultCoverRPM
	}
	if c.Covers.TimeoutSeconds == 0 {
		c.Covers.TimeoutSeconds = defaultCoverTimeout
	}
}

func (c *Config) normalizeServer() {
	if c.Server.AIRequestsPerMinute == 0 {
		c.Server.AIRequestsPerMinute = defaultAIRPM
	}
	origins := make([]string, 0, len(c.Server.CORSOrigins))
	for _, origin := range c.Server.CORSOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	c.Server.CORSOrigins = origins
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
