package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"varologs/internal/autocomplete"
	"varologs/internal/catalog"
	"varologs/internal/covers"
	"varologs/internal/credentials"
	"varologs/internal/logging"
	"varologs/internal/metrics"
	"varologs/internal/services"
	"varologs/internal/validation"
)

// Resolver turns a free-text query into metadata.
type Resolver interface {
	Resolve(ctx context.Context, req autocomplete.Request) (*autocomplete.Metadata, error)
}

// CoverFinder looks up cover art.
type CoverFinder interface {
	Find(ctx context.Context, q covers.Query) covers.Result
}

// KeyManager installs API keys and reports readiness.
type KeyManager interface {
	Configure(ctx context.Context, apiKey string) error
	Status() credentials.Status
}

// Options wires the handler's collaborators. Store, Resolver, Covers and Keys
// are required; the rest are optional.
type Options struct {
	Store    *catalog.Store
	Resolver Resolver
	Covers   CoverFinder
	Keys     KeyManager
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	Provider            string
	Models              []string
	FrontendDir         string
	CORSOrigins         []string
	AIRequestsPerMinute int
}

type server struct {
	store     *catalog.Store
	resolver  Resolver
	covers    CoverFinder
	keys      KeyManager
	metrics   *metrics.Metrics
	validator *validation.Validator
	logger    *slog.Logger

	provider    string
	models      []string
	frontendDir string
}

// NewHandler builds the chi router with the full middleware stack.
func NewHandler(opts Options) http.Handler {
	s := &server{
		store:       opts.Store,
		resolver:    opts.Resolver,
		covers:      opts.Covers,
		keys:        opts.Keys,
		metrics:     opts.Metrics,
		validator:   validation.New(),
		logger:      logging.NewComponentLogger(opts.Logger, "api"),
		provider:    opts.Provider,
		models:      append([]string(nil), opts.Models...),
		frontendDir: strings.TrimSpace(opts.FrontendDir),
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	aiLimit := opts.AIRequestsPerMinute
	if aiLimit <= 0 {
		aiLimit = 30
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", chimiddleware.RequestIDHeader},
		ExposedHeaders: []string{chimiddleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Get("/{id}", s.handleGetItem)
			r.Put("/{id}", s.handleUpdateItem)
			r.Delete("/{id}", s.handleDeleteItem)
			r.Post("/{id}/reviews", s.handleUpsertReview)
			r.Delete("/{id}/reviews", s.handleDeleteReview)
		})

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", s.handleListLists)
			r.Post("/", s.handleCreateList)
			r.Get("/{id}", s.handleGetList)
			r.Put("/{id}", s.handleUpdateList)
			r.Delete("/{id}", s.handleDeleteList)
			r.Post("/{id}/items", s.handleAddListItem)
			r.Delete("/{id}/items/{itemID}", s.handleRemoveListItem)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(httprate.Limit(aiLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					s.writeError(w, http.StatusTooManyRequests, "too many AI requests, try again shortly")
				}),
			))
			r.Post("/autocomplete", s.handleAutocomplete)
			r.Get("/cover", s.handleCover)
			r.Get("/status", s.handleAIStatus)
		})

		r.Post("/config/apikey", s.handleConfigureKey)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			s.writeError(w, http.StatusNotFound, "not found")
		})
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.NotFound(s.handleFrontend)

	return r
}

// requestLogger stamps the request id into the service context, records
// metrics and logs one line per request.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		if id := chimiddleware.GetReqID(ctx); id != "" {
			ctx = services.WithRequestID(ctx, id)
			w.Header().Set(chimiddleware.RequestIDHeader, id)
		}
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, status, elapsed)
		}

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logging.WithContext(ctx, s.logger).Log(ctx, level, "http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("route", route),
			logging.Int("status", status),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("elapsed", elapsed),
			logging.String("remote", r.RemoteAddr),
		)
	})
}
