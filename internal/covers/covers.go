package covers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"varologs/internal/logging"
	"varologs/internal/media"
)

const (
	openLibraryCoverBase = "https://covers.openlibrary.org/b"
	tmdbImageBase        = "https://image.tmdb.org/t/p/w500"
	placeholderBase      = "https://via.placeholder.com/300x450"
	duckDuckGoBase       = "https://duckduckgo.com/"
)

// Query describes the work whose cover is wanted.
type Query struct {
	Title   string
	Type    media.Type
	Year    *int
	Creator string
}

// Result is always usable: CoverURL falls back to the placeholder.
type Result struct {
	CoverURL    string `json:"cover_url"`
	SearchURL   string `json:"search_url"`
	Placeholder bool   `json:"placeholder"`
	Source      string `json:"source,omitempty"`
}

// QuerySuggester proposes an image search term. The autocomplete resolver
// implements it.
type QuerySuggester interface {
	SuggestCoverQuery(ctx context.Context, title string, t media.Type, year *int) string
}

// Config controls the outbound lookups.
type Config struct {
	Enabled            bool
	OpenLibraryBaseURL string
	TMDBAPIKey         string
	TMDBBaseURL        string
	TMDBLanguage       string
	RequestsPerMinute  int
	Timeout            time.Duration
}

// Finder looks up cover art from public catalogs. All sources share one
// rate limiter.
type Finder struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	suggester  QuerySuggester
	logger     *slog.Logger
}

// Option customizes a Finder.
type Option func(*Finder)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Finder) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithLogger sets the finder logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithSuggester enables model-suggested image search terms.
func WithSuggester(s QuerySuggester) Option {
	return func(f *Finder) { f.suggester = s }
}

// New builds a Finder.
func New(cfg Config, opts ...Option) *Finder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	cfg.OpenLibraryBaseURL = strings.TrimRight(strings.TrimSpace(cfg.OpenLibraryBaseURL), "/")
	cfg.TMDBBaseURL = strings.TrimRight(strings.TrimSpace(cfg.TMDBBaseURL), "/")
	cfg.TMDBAPIKey = strings.TrimSpace(cfg.TMDBAPIKey)

	f := &Finder{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), max(1, cfg.RequestsPerMinute/10)),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.NewComponentLogger(f.logger, "covers")
	return f
}

// Find returns the best cover for q. Lookup failures are logged and never
// returned; the caller always gets a placeholder at worst.
func (f *Finder) Find(ctx context.Context, q Query) Result {
	q.Title = strings.TrimSpace(q.Title)
	q.Creator = strings.TrimSpace(q.Creator)
	result := Result{SearchURL: SearchURL(f.searchTerm(ctx, q))}

	if f.cfg.Enabled && q.Title != "" {
		coverURL, source, err := f.lookup(ctx, q)
		switch {
		case err != nil:
			logging.WarnWithContext(logging.WithContext(ctx, f.logger), "cover lookup failed", "cover_lookup_failed",
				logging.String(logging.FieldMediaType, string(q.Type)),
				logging.String("source", source),
				logging.Error(err),
				logging.Impact("placeholder cover used"),
				logging.Hint("check network access and covers settings"),
			)
		case coverURL != "":
			result.CoverURL = coverURL
			result.Source = source
			return result
		}
	}
	result.CoverURL = Placeholder(q.Type)
	result.Placeholder = true
	return result
}

func (f *Finder) lookup(ctx context.Context, q Query) (string, string, error) {
	switch q.Type {
	case media.Book, media.Manga:
		if f.cfg.OpenLibraryBaseURL == "" {
			return "", "", nil
		}
		coverURL, err := f.searchOpenLibrary(ctx, q)
		return coverURL, "openlibrary", err
	case media.Movie, media.Series, media.Anime:
		if f.cfg.TMDBAPIKey == "" || f.cfg.TMDBBaseURL == "" {
			return "", "", nil
		}
		coverURL, err := f.searchTMDB(ctx, q)
		return coverURL, "tmdb", err
	}
	return "", "", nil
}

func (f *Finder) searchTerm(ctx context.Context, q Query) string {
	if f.suggester != nil && q.Title != "" {
		if term := strings.TrimSpace(f.suggester.SuggestCoverQuery(ctx, q.Title, q.Type, q.Year)); term != "" {
			return term
		}
	}
	parts := []string{q.Title}
	if q.Year != nil {
		parts = append(parts, strconv.Itoa(*q.Year))
	}
	parts = append(parts, string(q.Type), "cover poster")
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// SearchURL returns a DuckDuckGo image search link for term.
func SearchURL(term string) string {
	params := url.Values{}
	params.Set("q", term)
	params.Set("iax", "images")
	params.Set("ia", "images")
	return duckDuckGoBase + "?" + params.Encode()
}

// Placeholder returns the generic cover for t.
func Placeholder(t media.Type) string {
	return placeholderBase + "/" + t.PlaceholderColor() + "/ffffff?text=" + url.QueryEscape(t.Icon())
}

func (f *Finder) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return f.httpClient.Do(req)
}
