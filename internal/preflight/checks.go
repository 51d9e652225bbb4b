package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"varologs/internal/catalog"
	"varologs/internal/config"
	"varologs/internal/credentials"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabase opens the catalog, applying pending migrations, and reports
// the schema version.
func CheckDatabase(ctx context.Context, path string) Result {
	const name = "Catalog database"

	store, err := catalog.OpenPath(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: schema: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema %s)", path, version)}
}

// CheckAIKey reports whether key discovery would find a key. The key is not
// validated remotely.
func CheckAIKey(cfg *config.Config) Result {
	const name = "AI key"

	store := credentials.NewFileSettingsStore(cfg.SettingsPath())
	key, source, ok := credentials.DiscoverKey(credentials.EnvLookup(cfg.AI.KeyEnv), store)
	if !ok {
		return Result{
			Name:     name,
			Optional: true,
			Detail:   fmt.Sprintf("not configured (set %s or run `varologs ai set-key`)", cfg.AI.KeyEnv),
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s from %s", credentials.MaskKey(key), source)}
}

// CheckTMDB verifies TMDB connectivity and authentication.
func CheckTMDB(ctx context.Context, baseURL, apiKey string) Result {
	const name = "TMDB"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Optional: true, Detail: "missing url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Optional: true, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	endpoint := base + "/configuration?" + url.Values{"api_key": {strings.TrimSpace(apiKey)}}.Encode()
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Optional: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Optional: true, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("auth check failed (%d)", resp.StatusCode)}
	}
}

// CheckFrontend reports whether a built single-page app is available.
func CheckFrontend(cfg *config.Config) Result {
	const name = "Frontend build"
	if !cfg.FrontendAvailable() {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (no index.html; API only)", cfg.Paths.FrontendDir)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: cfg.Paths.FrontendDir}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	return err.Error()
}
