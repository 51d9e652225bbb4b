package credentials

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"varologs/internal/logging"
	"varologs/internal/services"
)

// Factory builds a generator bound to one API key. It must not call the
// remote service.
type Factory func(ctx context.Context, apiKey string) (services.Generator, error)

// Handle is an immutable, fully constructed client. A resolution captures one
// handle and uses it for every attempt.
type Handle struct {
	Generator    services.Generator
	Source       KeySource
	KeyHint      string
	ConfiguredAt time.Time
}

// Status is a network-free snapshot for status endpoints and the CLI.
type Status struct {
	Configured   bool       `json:"configured"`
	Source       KeySource  `json:"source"`
	KeyHint      string     `json:"key_hint,omitempty"`
	KeyEnv       string     `json:"key_env"`
	ConfiguredAt *time.Time `json:"configured_at,omitempty"`
}

// Manager owns the process-wide client handle. Reads are lock-free; Configure
// calls are serialized so persistence and swap happen in the same order.
type Manager struct {
	factory Factory
	store   SettingsStore
	env     LookupFunc
	setenv  func(key, value string) error
	keyEnv  string
	persist bool
	logger  *slog.Logger
	now     func() time.Time

	once    sync.Once
	mu      sync.Mutex
	current atomic.Pointer[Handle]
}

// Option customizes the manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithKeyEnv sets the environment variable used for discovery and export.
func WithKeyEnv(name string) Option {
	return func(m *Manager) {
		if name = strings.TrimSpace(name); name != "" {
			m.keyEnv = name
		}
	}
}

// WithPersistence toggles writing configured keys to the settings store.
func WithPersistence(enabled bool) Option {
	return func(m *Manager) { m.persist = enabled }
}

// WithEnvironment overrides how the default key is looked up and exported.
func WithEnvironment(lookup LookupFunc, setenv func(key, value string) error) Option {
	return func(m *Manager) {
		if lookup != nil {
			m.env = lookup
		}
		if setenv != nil {
			m.setenv = setenv
		}
	}
}

// DefaultKeyEnv is the environment variable consulted when none is configured.
const DefaultKeyEnv = "GEMINI_API_KEY"

// NewManager builds a manager. Key discovery is deferred to first use.
func NewManager(factory Factory, store SettingsStore, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		store:   store,
		keyEnv:  DefaultKeyEnv,
		persist: true,
		setenv:  os.Setenv,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.env == nil {
		m.env = EnvLookup(m.keyEnv)
	}
	m.logger = logging.NewComponentLogger(m.logger, "credentials")
	return m
}

// Ready reports whether a client handle exists. It never touches the network.
func (m *Manager) Ready() bool {
	_, ok := m.Current()
	return ok
}

// Current returns the active handle, running discovery on first access.
func (m *Manager) Current() (*Handle, bool) {
	m.init()
	h := m.current.Load()
	return h, h != nil
}

// Status summarizes the current handle without exposing the key.
func (m *Manager) Status() Status {
	status := Status{Source: SourceNone, KeyEnv: m.keyEnv}
	if h, ok := m.Current(); ok {
		status.Configured = true
		status.Source = h.Source
		status.KeyHint = h.KeyHint
		at := h.ConfiguredAt
		status.ConfiguredAt = &at
	}
	return status
}

// Configure builds a client for apiKey and makes it current. The key is not
// validated remotely. When persistence is enabled and the write fails, the
// previous handle stays current and the error is returned.
func (m *Manager) Configure(ctx context.Context, apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return services.Wrap(services.ErrValidation, "credentials", "configure", "api key is required", nil)
	}
	m.init()

	m.mu.Lock()
	defer m.mu.Unlock()

	handle, err := m.build(ctx, key, SourceRuntime)
	if err != nil {
		return err
	}
	if m.persist && m.store != nil {
		if err := m.store.WriteKey(key); err != nil {
			return services.Wrap(services.ErrExternal, "credentials", "configure", "persist api key", err)
		}
	}
	m.current.Store(handle)
	if err := m.setenv(m.keyEnv, key); err != nil {
		m.logger.Warn("api key export failed",
			logging.String("env", m.keyEnv),
			logging.Error(err),
			logging.String(logging.FieldEventType, "credentials_env_export_failed"),
			logging.Impact("child processes will not inherit the key"),
		)
	}
	m.logger.Info("ai client configured",
		logging.String("source", string(handle.Source)),
		logging.String("key_hint", handle.KeyHint),
		logging.Bool("persisted", m.persist && m.store != nil),
	)
	return nil
}

func (m *Manager) init() {
	m.once.Do(m.discover)
}

func (m *Manager) discover() {
	key, source, ok := DiscoverKey(m.env, loggingStore{next: m.store, logger: m.logger})
	if !ok {
		m.logger.Info("ai client not configured",
			logging.String("env", m.keyEnv),
			logging.Hint("set "+m.keyEnv+" or configure a key from settings"),
		)
		return
	}
	handle, err := m.build(context.Background(), key, source)
	if err != nil {
		logging.WarnWithContext(m.logger, "ai client construction failed", "credentials_discovery_failed",
			logging.String("source", string(source)),
			logging.Error(err),
			logging.Impact("autocomplete unavailable until a key is configured"),
		)
		return
	}
	m.current.Store(handle)
	m.logger.Info("ai client initialized",
		logging.String("source", string(source)),
		logging.String("key_hint", handle.KeyHint),
	)
}

func (m *Manager) build(ctx context.Context, key string, source KeySource) (*Handle, error) {
	if m.factory == nil {
		return nil, services.Wrap(services.ErrConfiguration, "credentials", "build client", "no client factory", nil)
	}
	generator, err := m.factory(ctx, key)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "credentials", "build client", "", err)
	}
	return &Handle{
		Generator:    generator,
		Source:       source,
		KeyHint:      MaskKey(key),
		ConfiguredAt: m.now(),
	}, nil
}

// MaskKey renders a key as a short hint safe for logs and status output.
func MaskKey(key string) string {
	runes := []rune(strings.TrimSpace(key))
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + "…" + string(runes[len(runes)-4:])
}

// loggingStore reports read failures that DiscoverKey treats as absence.
type loggingStore struct {
	next   SettingsStore
	logger *slog.Logger
}

func (s loggingStore) ReadKey() (string, bool, error) {
	if s.next == nil {
		return "", false, nil
	}
	key, ok, err := s.next.ReadKey()
	if err != nil {
		logging.WarnWithContext(s.logger, "settings store unreadable", "credentials_store_read_failed",
			logging.Error(err),
			logging.Impact("persisted api key ignored"),
		)
	}
	return key, ok, err
}

func (s loggingStore) WriteKey(key string) error {
	if s.next == nil {
		return nil
	}
	return s.next.WriteKey(key)
}
