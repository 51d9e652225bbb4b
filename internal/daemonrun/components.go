package daemonrun

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"varologs/internal/api"
	"varologs/internal/autocomplete"
	"varologs/internal/catalog"
	"varologs/internal/config"
	"varologs/internal/covers"
	"varologs/internal/credentials"
	"varologs/internal/language"
	"varologs/internal/metrics"
	"varologs/internal/services"
	"varologs/internal/services/gemini"
	"varologs/internal/services/llm"
)

// Components are the long-lived collaborators behind the HTTP API.
type Components struct {
	Store    *catalog.Store
	Keys     *credentials.Manager
	Resolver *autocomplete.Resolver
	Covers   *covers.Finder
	Metrics  *metrics.Metrics
	Handler  http.Handler
}

// Assemble opens the catalog and wires the AI, cover and API layers.
func Assemble(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	keys := NewKeyManager(cfg, logger)
	m := metrics.New()

	resolver, err := autocomplete.New(keys, ResolverConfig(cfg),
		autocomplete.WithLogger(logger),
		autocomplete.WithObserver(m),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	finder := covers.New(CoversConfig(cfg),
		covers.WithLogger(logger),
		covers.WithSuggester(resolver),
	)

	// Discovery runs here so the first request does not pay for it.
	m.SetConfigured(keys.Ready())

	handler := api.NewHandler(api.Options{
		Store:               store,
		Resolver:            resolver,
		Covers:              finder,
		Keys:                keys,
		Metrics:             m,
		Logger:              logger,
		Provider:            cfg.AI.Provider,
		Models:              resolver.Models(),
		FrontendDir:         cfg.Paths.FrontendDir,
		CORSOrigins:         cfg.Server.CORSOrigins,
		AIRequestsPerMinute: cfg.Server.AIRequestsPerMinute,
	})

	return &Components{
		Store:    store,
		Keys:     keys,
		Resolver: resolver,
		Covers:   finder,
		Metrics:  m,
		Handler:  handler,
	}, nil
}

// Close releases the catalog database.
func (c *Components) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// NewKeyManager builds the credential manager for cfg's provider, backed by
// the settings file in the data directory.
func NewKeyManager(cfg *config.Config, logger *slog.Logger) *credentials.Manager {
	return credentials.NewManager(
		GeneratorFactory(cfg),
		credentials.NewFileSettingsStore(cfg.SettingsPath()),
		credentials.WithLogger(logger),
		credentials.WithKeyEnv(cfg.AI.KeyEnv),
		credentials.WithPersistence(cfg.AI.PersistKey),
	)
}

// GeneratorFactory returns a factory that builds the configured provider's
// client from an API key.
func GeneratorFactory(cfg *config.Config) credentials.Factory {
	timeout := cfg.AI.AttemptTimeoutSeconds
	switch cfg.AI.Provider {
	case config.ProviderOpenRouter:
		return func(_ context.Context, apiKey string) (services.Generator, error) {
			if apiKey == "" {
				return nil, services.Wrap(services.ErrConfiguration, "llm", "new client", "api key required", nil)
			}
			return llm.NewClient(llm.Config{
				APIKey:         apiKey,
				BaseURL:        cfg.AI.BaseURL,
				Referer:        cfg.AI.Referer,
				Title:          cfg.AI.Title,
				TimeoutSeconds: timeout,
			}), nil
		}
	default:
		return func(ctx context.Context, apiKey string) (services.Generator, error) {
			return gemini.NewClient(ctx, gemini.Config{
				APIKey:         apiKey,
				BaseURL:        cfg.AI.BaseURL,
				TimeoutSeconds: timeout,
			})
		}
	}
}

// ResolverConfig maps the ai section onto the cascade settings.
func ResolverConfig(cfg *config.Config) autocomplete.Config {
	return autocomplete.Config{
		Models:          cfg.AI.Models,
		Temperature:     float32(cfg.AI.Temperature),
		MaxOutputTokens: int32(cfg.AI.MaxOutputTokens),
		AttemptTimeout:  time.Duration(cfg.AI.AttemptTimeoutSeconds) * time.Second,
		Language:        language.Match(cfg.AI.PromptLanguage),
		Extended:        cfg.AI.Schema == config.SchemaExtended,
	}
}

// CoversConfig maps the covers section onto the finder settings.
func CoversConfig(cfg *config.Config) covers.Config {
	return covers.Config{
		Enabled:            cfg.Covers.Enabled,
		OpenLibraryBaseURL: cfg.Covers.OpenLibraryBaseURL,
		TMDBAPIKey:         cfg.Covers.TMDBAPIKey,
		TMDBBaseURL:        cfg.Covers.TMDBBaseURL,
		TMDBLanguage:       cfg.Covers.TMDBLanguage,
		RequestsPerMinute:  cfg.Covers.RequestsPerMinute,
		Timeout:            time.Duration(cfg.Covers.TimeoutSeconds) * time.Second,
	}
}
