package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"varologs/internal/config"
	"varologs/internal/daemon"
	"varologs/internal/logging"
	"varologs/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the VaroLogs server and blocks until a signal or cmdCtx ends it.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	outputs := []string{"stdout"}
	if logPath := cfg.LogFilePath(); logPath != "" {
		outputs = append(outputs, logPath)
	}
	sessionID := uuid.NewString()
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Development: opts.Development,
		SessionID:   sessionID,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logDependencySnapshot(logger, cfg)
	logPreflight(signalCtx, logger, cfg)

	components, err := Assemble(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("assemble components", logging.Error(err))
		return err
	}
	defer components.Close()

	d, err := daemon.New(cfg, components.Handler, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()
	if err := d.Start(signalCtx); err != nil {
		return err
	}

	pidPath := filepath.Join(cfg.Paths.DataDir, "varologs.pid")
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("pid file not written",
			logging.String(logging.FieldEventType, "pid_file_failed"),
			logging.Error(err),
			logging.Impact("status tooling cannot find the process id"),
			logging.Hint("check data_dir permissions"),
		)
	} else {
		defer os.Remove(pidPath)
	}

	<-d.Done()
	logger.Info("varologs daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	_, keyInEnv := os.LookupEnv(cfg.AI.KeyEnv)
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("ai_provider", cfg.AI.Provider),
		logging.Any("ai_models", cfg.AI.Models),
		logging.String("ai_schema", cfg.AI.Schema),
		logging.String("ai_prompt_language", cfg.AI.PromptLanguage),
		logging.Bool("ai_key_in_env", keyInEnv),
		logging.Bool("covers_enabled", cfg.Covers.Enabled),
		logging.Bool("tmdb_key_present", cfg.Covers.TMDBAPIKey != ""),
		logging.Bool("frontend_available", cfg.FrontendAvailable()),
		logging.String("database_path", cfg.Paths.DatabasePath),
		logging.String("api_bind", cfg.Paths.APIBind),
	)
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		impact := "server may fail requests"
		if result.Optional {
			impact = "feature degraded"
		}
		logger.Warn("preflight check failed",
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.Impact(impact),
			logging.Hint("run `varologs status` for details"),
		)
	}
}
