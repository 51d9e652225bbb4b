package autocomplete

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"varologs/internal/credentials"
	"varologs/internal/logging"
	"varologs/internal/media"
	"varologs/internal/services"
)

const (
	defaultMaxTokens      = 500
	defaultAttemptTimeout = 20 * time.Second
	coverTemperature      = 0.1
	coverMaxTokens        = 50
)

// ClientSource yields the current client handle. credentials.Manager
// satisfies it.
type ClientSource interface {
	Current() (*credentials.Handle, bool)
}

// Observer receives cascade telemetry. Implementations must be safe for
// concurrent use.
type Observer interface {
	AttemptFinished(model, outcome string, elapsed time.Duration)
	ResolutionFinished(outcome string)
}

// Config fixes the cascade before any resolution runs.
type Config struct {
	Models []string
	// Temperature is sent as given. Zero is a valid setting.
	Temperature     float32
	MaxOutputTokens int32
	AttemptTimeout  time.Duration
	Language        language.Tag
	Extended        bool
}

// Resolver turns free-text queries into validated metadata by walking an
// ordered model cascade. It keeps no per-query state.
type Resolver struct {
	source         ClientSource
	models         []string
	temperature    float32
	maxTokens      int32
	attemptTimeout time.Duration
	lang           language.Tag
	extended       bool
	logger         *slog.Logger
	observer       Observer
}

// Option customizes the resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver wires cascade telemetry.
func WithObserver(observer Observer) Option {
	return func(r *Resolver) {
		if observer != nil {
			r.observer = observer
		}
	}
}

// New builds a resolver. The model list is copied; later changes to
// cfg.Models do not affect it.
func New(source ClientSource, cfg Config, opts ...Option) (*Resolver, error) {
	if source == nil {
		return nil, services.Wrap(services.ErrConfiguration, "autocomplete", "new resolver", "client source required", nil)
	}
	models := make([]string, 0, len(cfg.Models))
	for _, model := range cfg.Models {
		if model = strings.TrimSpace(model); model != "" {
			models = append(models, model)
		}
	}
	if len(models) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "autocomplete", "new resolver", "at least one model required", nil)
	}
	r := &Resolver{
		source:         source,
		models:         models,
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxOutputTokens,
		attemptTimeout: cfg.AttemptTimeout,
		lang:           cfg.Language,
		extended:       cfg.Extended,
		observer:       nopObserver{},
	}
	if r.maxTokens <= 0 {
		r.maxTokens = defaultMaxTokens
	}
	if r.attemptTimeout <= 0 {
		r.attemptTimeout = defaultAttemptTimeout
	}
	if r.lang == language.Und {
		r.lang = language.Spanish
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "autocomplete")
	return r, nil
}

// Models returns a copy of the cascade order.
func (r *Resolver) Models() []string {
	return append([]string(nil), r.models...)
}

// Resolve walks the cascade and returns the first schema-conforming record.
// It returns ErrNotConfigured without any network call when no client
// exists, *ExhaustedCascadeError when every model fails, and the context
// error if ctx ends first.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Metadata, error) {
	req, err := req.normalize()
	if err != nil {
		r.observer.ResolutionFinished("invalid")
		return nil, err
	}
	handle, ok := r.source.Current()
	if !ok || handle == nil || handle.Generator == nil {
		r.observer.ResolutionFinished("not_configured")
		return nil, ErrNotConfigured
	}

	ctx = services.WithOperation(ctx, "autocomplete")
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldMediaType, string(req.Type)),
		logging.String("query", req.Query),
	)
	prompt := buildPrompt(req, r.lang, r.extended)
	logger.Debug("resolution started", logging.Int("candidates", len(r.models)))

	failures := make([]AttemptFailure, 0, len(r.models))
	for _, model := range r.models {
		if err := ctx.Err(); err != nil {
			r.observer.ResolutionFinished("canceled")
			return nil, err
		}
		result := r.runAttempt(ctx, handle.Generator, model, prompt)
		if err := ctx.Err(); err != nil {
			r.observer.ResolutionFinished("canceled")
			return nil, err
		}
		if result.failure == nil {
			logger.Info("metadata resolved",
				logging.String(logging.FieldModel, model),
				logging.Int("attempt", len(failures)+1),
				logging.String("title", result.metadata.Title),
			)
			r.observer.ResolutionFinished("success")
			return result.metadata, nil
		}
		failures = append(failures, *result.failure)
		logging.WarnWithContext(logger, "model attempt failed", "ai_attempt_failed",
			logging.String(logging.FieldModel, model),
			logging.String("stage", string(result.failure.Stage)),
			logging.Error(result.failure.Err),
			logging.Impact("falling back to next model"),
		)
	}

	exhausted := &ExhaustedCascadeError{Attempts: failures}
	logging.ErrorWithContext(logger, "all models failed", "ai_cascade_exhausted",
		logging.Int("attempts", len(failures)),
		logging.Error(exhausted.Unwrap()),
		logging.Hint("verify the API key and model names; user falls back to manual entry"),
	)
	r.observer.ResolutionFinished("exhausted")
	return nil, exhausted
}

// runAttempt asks one model under the per-attempt timeout and classifies the result.
func (r *Resolver) runAttempt(ctx context.Context, gen services.Generator, model, prompt string) attempt {
	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	start := time.Now()
	text, err := gen.Generate(attemptCtx, services.GenerateRequest{
		Model:           model,
		Prompt:          prompt,
		Temperature:     r.temperature,
		MaxOutputTokens: r.maxTokens,
	})
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, services.ErrTimeout) {
			err = services.Wrap(services.ErrTimeout, "autocomplete", model, "attempt deadline exceeded", err)
		}
		r.observer.AttemptFinished(model, string(StageCall), elapsed)
		return attempt{model: model, failure: &AttemptFailure{Model: model, Stage: StageCall, Err: err}}
	}

	meta, stage, err := decodeMetadata(text, r.extended)
	if err != nil {
		r.observer.AttemptFinished(model, string(stage), elapsed)
		return attempt{model: model, raw: text, failure: &AttemptFailure{Model: model, Stage: stage, Raw: text, Err: err}}
	}
	meta.Model = model
	r.observer.AttemptFinished(model, "success", elapsed)
	return attempt{model: model, raw: text, metadata: meta}
}

// SuggestCoverQuery asks the first cascade model for an English image-search
// term. It never fails: without a client, or on any error, it returns a
// "<title> <year> <type> cover" heuristic.
func (r *Resolver) SuggestCoverQuery(ctx context.Context, title string, t media.Type, year *int) string {
	fallback := fallbackCoverQuery(title, t, year)
	handle, ok := r.source.Current()
	if !ok || handle == nil || handle.Generator == nil {
		return fallback
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	model := r.models[0]
	text, err := handle.Generator.Generate(attemptCtx, services.GenerateRequest{
		Model:           model,
		Prompt:          buildCoverPrompt(title, t, year, r.lang),
		Temperature:     coverTemperature,
		MaxOutputTokens: coverMaxTokens,
	})
	if err != nil {
		logging.WithContext(ctx, r.logger).Debug("cover query suggestion failed",
			logging.String(logging.FieldModel, model),
			logging.Error(err),
		)
		return fallback
	}
	if suggestion := cleanSuggestion(text); suggestion != "" {
		return suggestion
	}
	return fallback
}

// cleanSuggestion keeps the first line of a model reply without wrapping quotes.
func cleanSuggestion(text string) string {
	line := strings.TrimSpace(stripFence(text))
	if idx := strings.IndexAny(line, "\r\n"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.Trim(strings.TrimSpace(line), "\"'`")
	return strings.TrimSpace(line)
}

type nopObserver struct{}

func (nopObserver) AttemptFinished(string, string, time.Duration) {}

func (nopObserver) ResolutionFinished(string) {}
