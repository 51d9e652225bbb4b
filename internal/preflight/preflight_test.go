package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"varologs/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckTMDB_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckTMDB(context.Background(), srv.URL, "good-key")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckTMDB_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckTMDB(context.Background(), srv.URL, "bad")
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
	if result.Detail != "auth failed (invalid api key)" {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckAIKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.AI.KeyEnv = "VAROLOGS_PREFLIGHT_KEY"
	t.Setenv("VAROLOGS_PREFLIGHT_KEY", "")

	if result := CheckAIKey(cfg); result.Passed || !result.Optional {
		t.Fatalf("expected optional failure without key, got %+v", result)
	}

	t.Setenv("VAROLOGS_PREFLIGHT_KEY", "preflight-key-123456")
	result := CheckAIKey(cfg)
	if !result.Passed {
		t.Fatalf("expected pass with env key, got %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFrontend())
	cfg.AI.KeyEnv = "VAROLOGS_PREFLIGHT_KEY"
	t.Setenv("VAROLOGS_PREFLIGHT_KEY", "")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	names := map[string]Result{}
	for _, r := range results {
		names[r.Name] = r
	}
	for _, want := range []string{"Data directory", "Log directory", "Catalog database", "AI key", "Frontend build"} {
		if _, ok := names[want]; !ok {
			t.Fatalf("missing check %q in %+v", want, results)
		}
	}
	if !names["Catalog database"].Passed {
		t.Fatalf("database check failed: %s", names["Catalog database"].Detail)
	}
	if !names["Frontend build"].Passed {
		t.Fatalf("frontend check failed: %s", names["Frontend build"].Detail)
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "AI key" {
		t.Fatalf("expected only the AI key to fail, got %+v", failed)
	}
}
