package rest

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FrontendHandler serves a single-page frontend build: real files when they
// exist, the index document for any other path so client-side routing works.
type FrontendHandler struct {
	staticDir string
	indexFile string
}

func NewFrontendHandler(staticDir, indexFile string) *FrontendHandler {
	return &FrontendHandler{staticDir: staticDir, indexFile: indexFile}
}

func (h *FrontendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requested := filepath.Join(h.staticDir, filepath.Clean("/"+r.URL.Path))
	if !strings.HasPrefix(requested, filepath.Clean(h.staticDir)) {
		http.NotFound(w, r)
		return
	}
	if info, err := os.Stat(requested); err == nil && !info.IsDir() {
		http.ServeFile(w, r, requested)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, h.indexFile))
}
