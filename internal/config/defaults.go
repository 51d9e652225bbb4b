package config

const (
	defaultConfigPath     = "~/.config/varologs/config.toml"
	projectConfigName     = "varologs.toml"
	settingsFileName      = "config.json"
	defaultDataDir        = "~/.local/share/varologs"
	defaultDatabaseName   = "varologs.db"
	defaultAPIBind        = "0.0.0.0:3001"
	defaultAIProvider     = "gemini"
	defaultTemperature    = 0.3
	defaultMaxTokens      = 500
	defaultAttemptTimeout = 20
	defaultPromptLanguage = "es"
	defaultSchema         = "basic"
	defaultKeyEnv         = "GEMINI_API_KEY"
	defaultReferer        = "https://github.com/varologs/varologs"
	defaultTitle          = "VaroLogs"
	defaultOpenRouterURL  = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenLibraryURL = "https://openlibrary.org"
	defaultTMDBBaseURL    = "https://api.themoviedb.org/3"
	defaultTMDBLanguage   = "es-ES"
	defaultCoverRPM       = 60
	defaultCoverTimeout   = 10
	defaultAIRPM          = 30
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	SchemaBasic        = "basic"
	SchemaExtended     = "extended"
)

// DefaultModels is the cascade order used when ai.models is not configured.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			APIBind: defaultAPIBind,
		},
		AI: AI{
			Provider:              defaultAIProvider,
			Models:                append([]string(nil), DefaultModels...),
			Temperature:           defaultTemperature,
			MaxOutputTokens:       defaultMaxTokens,
			AttemptTimeoutSeconds: defaultAttemptTimeout,
			PromptLanguage:        defaultPromptLanguage,
			Schema:                defaultSchema,
			KeyEnv:                defaultKeyEnv,
			PersistKey:            true,
			Referer:               defaultReferer,
			Title:                 defaultTitle,
		},
		Covers: Covers{
			Enabled:            true,
			OpenLibraryBaseURL: defaultOpenLibraryURL,
			TMDBBaseURL:        defaultTMDBBaseURL,
			TMDBLanguage:       defaultTMDBLanguage,
			RequestsPerMinute:  defaultCoverRPM,
			TimeoutSeconds:     defaultCoverTimeout,
		},
		Server: Server{
			AIRequestsPerMinute: defaultAIRPM,
			CORSOrigins:         []string{"*"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
