package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"varologs/internal/config"
	"varologs/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Daemon serves the API handler and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler http.Handler

	lockPath string
	lock     *flock.Flock

	mu       sync.Mutex
	running  atomic.Bool
	listener net.Listener
	server   *http.Server
	done     chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool   `json:"running"`
	Address      string `json:"address,omitempty"`
	DatabasePath string `json:"database_path"`
	LockFilePath string `json:"lock_file_path"`
}

// New constructs a daemon around an HTTP handler.
func New(cfg *config.Config, handler http.Handler, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || handler == nil {
		return nil, errors.New("daemon requires config and handler")
	}
	lockPath := LockPath(cfg)
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		handler:  handler,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// LockPath returns the instance lock location for cfg.
func LockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "varologs.lock")
}

// Start acquires the instance lock and begins serving. The server stops when
// ctx ends or Stop is called.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another varologs instance is already running")
	}

	bind := strings.TrimSpace(d.cfg.Paths.APIBind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	d.listener = listener
	d.server = &http.Server{
		Handler:           d.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	d.done = make(chan struct{})
	d.running.Store(true)

	server, done := d.server, d.done
	go func() {
		defer close(done)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("api server error",
				logging.String(logging.FieldEventType, "api_server_error"),
				logging.Error(err),
			)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			d.Stop()
		case <-done:
		}
	}()

	d.logger.Info("varologs daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("address", listener.Addr().String()),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop shuts the server down gracefully and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("graceful shutdown incomplete",
			logging.String(logging.FieldEventType, "daemon_shutdown_forced"),
			logging.Error(err),
			logging.Impact("in-flight requests were dropped"),
			logging.Hint("long AI calls can exceed the shutdown window"),
		)
		_ = d.server.Close()
	}
	<-d.done
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.String(logging.FieldEventType, "daemon_unlock_failed"),
			logging.Error(err),
			logging.Impact("next start may report another instance"),
			logging.Hint("remove "+d.lockPath+" if no server is running"),
		)
	}
	d.listener = nil
	d.server = nil
	d.running.Store(false)
	d.logger.Info("varologs daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Done is closed once the server has stopped. It is nil before Start.
func (d *Daemon) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// Status returns the current runtime snapshot.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	status := Status{
		Running:      d.running.Load(),
		DatabasePath: d.cfg.Paths.DatabasePath,
		LockFilePath: d.lockPath,
	}
	if d.listener != nil {
		status.Address = d.listener.Addr().String()
	}
	return status
}

// Close stops the daemon if it is running.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}
