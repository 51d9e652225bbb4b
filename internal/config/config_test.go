package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"varologs/internal/config"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DB_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("TMDB_API_KEY", "")
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolateEnv(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "varologs", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	wantData := filepath.Join(home, ".local", "share", "varologs")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.DatabasePath != filepath.Join(wantData, "varologs.db") {
		t.Fatalf("unexpected database path: %q", cfg.Paths.DatabasePath)
	}
	if cfg.Paths.APIBind != "0.0.0.0:3001" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.AI.Provider != config.ProviderGemini {
		t.Fatalf("unexpected provider %q", cfg.AI.Provider)
	}
	if strings.Join(cfg.AI.Models, ",") != "gemini-2.5-flash,gemini-2.0-flash,gemini-1.5-flash" {
		t.Fatalf("unexpected default cascade %v", cfg.AI.Models)
	}
	if cfg.AI.AttemptTimeoutSeconds != 20 {
		t.Fatalf("unexpected attempt timeout %d", cfg.AI.AttemptTimeoutSeconds)
	}
	if cfg.AI.KeyEnv != "GEMINI_API_KEY" || !cfg.AI.PersistKey {
		t.Fatalf("unexpected key settings: env=%q persist=%v", cfg.AI.KeyEnv, cfg.AI.PersistKey)
	}
	if cfg.SettingsPath() != filepath.Join(wantData, "config.json") {
		t.Fatalf("unexpected settings path %q", cfg.SettingsPath())
	}
	if cfg.Server.AIRequestsPerMinute != 30 {
		t.Fatalf("unexpected ai rate limit %d", cfg.Server.AIRequestsPerMinute)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "custom.db")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("PORT", "8080")
	t.Setenv("TMDB_API_KEY", "tmdb-key")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.DatabasePath != dbPath {
		t.Fatalf("expected DB_PATH override, got %q", cfg.Paths.DatabasePath)
	}
	if cfg.Paths.APIBind != "0.0.0.0:8080" {
		t.Fatalf("expected PORT override, got %q", cfg.Paths.APIBind)
	}
	if cfg.Covers.TMDBAPIKey != "tmdb-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.Covers.TMDBAPIKey)
	}
}

func TestLoadCustomPathParsesCascade(t *testing.T) {
	isolateEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(tempDir, "data")
	cfg.AI.Provider = "OpenRouter"
	cfg.AI.Models = []string{" google/gemini-2.5-flash ", "", "google/gemini-2.5-flash", "openai/gpt-4o-mini"}
	cfg.AI.Schema = "extended"
	cfg.AI.PersistKey = false
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected explicit config to be used, got %q exists=%v", resolved, exists)
	}
	if loaded.AI.Provider != config.ProviderOpenRouter {
		t.Fatalf("expected provider normalized, got %q", loaded.AI.Provider)
	}
	if strings.Join(loaded.AI.Models, ",") != "google/gemini-2.5-flash,openai/gpt-4o-mini" {
		t.Fatalf("expected trimmed, deduplicated cascade, got %v", loaded.AI.Models)
	}
	if loaded.AI.BaseURL == "" {
		t.Fatal("expected openrouter base url default")
	}
	if loaded.AI.PersistKey {
		t.Fatal("expected persist_key=false to be honoured")
	}
	if loaded.AI.Schema != config.SchemaExtended {
		t.Fatalf("unexpected schema %q", loaded.AI.Schema)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	isolateEnv(t)
	cases := map[string]func(*config.Config){
		"empty cascade":   func(c *config.Config) { c.AI.Models = nil },
		"bad provider":    func(c *config.Config) { c.AI.Provider = "llama" },
		"bad schema":      func(c *config.Config) { c.AI.Schema = "full" },
		"bad temperature": func(c *config.Config) { c.AI.Temperature = 3 },
		"bad timeout":     func(c *config.Config) { c.AI.AttemptTimeoutSeconds = -1 },
		"bad bind":        func(c *config.Config) { c.Paths.APIBind = "nonsense" },
		"bad log format":  func(c *config.Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataDir = t.TempDir()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.AI.Models) != 3 {
		t.Fatalf("expected sample cascade of three models, got %v", cfg.AI.Models)
	}
}

func TestEnsureDirectories(t *testing.T) {
	isolateEnv(t)
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.DatabasePath = filepath.Join(base, "db", "varologs.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, filepath.Dir(cfg.Paths.DatabasePath), cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if cfg.FrontendAvailable() {
		t.Fatal("frontend should be unavailable without frontend_dir")
	}
}
