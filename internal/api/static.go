package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// handleFrontend serves the built single-page app. Unknown paths get
// index.html so client-side routes work on reload.
func (s *server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	index := filepath.Join(s.frontendDir, "index.html")
	if s.frontendDir == "" || !isFile(index) {
		s.writeError(w, http.StatusNotFound, "Frontend not built")
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	if clean != "/" {
		candidate := filepath.Join(s.frontendDir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
		if isFile(candidate) {
			http.ServeFile(w, r, candidate)
			return
		}
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, index)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
