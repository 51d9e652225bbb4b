package testsupport

import (
	"path/filepath"
	"testing"

	"varologs/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.DatabasePath = filepath.Join(base, "data", "varologs.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.FrontendDir = filepath.Join(base, "frontend")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Covers.Enabled = false
	cfgVal.Logging.Format = "json"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithModels overrides the AI cascade order.
func WithModels(models ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AI.Models = append([]string(nil), models...)
	}
}

// WithExtendedSchema switches autocomplete to the extended field set.
func WithExtendedSchema() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AI.Schema = config.SchemaExtended
	}
}

// WithTMDBKey sets the TMDB API key and enables cover lookup.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Covers.TMDBAPIKey = key
		b.cfg.Covers.Enabled = true
	}
}

// WithFrontend writes a minimal index.html into the frontend directory.
func WithFrontend() ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, filepath.Join(b.cfg.Paths.FrontendDir, "index.html"), "<!doctype html><title>VaroLogs</title>")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
