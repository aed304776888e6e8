package handlers

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed static/*
var staticAssets embed.FS

// SPAHandler serves the embedded single-page app shell. Every page
// route returns index.html and the client router takes it from there;
// asset paths are served from the embedded filesystem directly.
type SPAHandler struct {
	fileServer http.Handler
	index      []byte
}

// NewSPAHandler creates the SPA shell handler.
func NewSPAHandler() *SPAHandler {
	staticFS, err := fs.Sub(staticAssets, "static")
	if err != nil {
		panic("failed to get static subdirectory: " + err.Error())
	}
	index, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		panic("failed to read embedded index.html: " + err.Error())
	}

	return &SPAHandler{
		fileServer: http.FileServer(http.FS(staticFS)),
		index:      index,
	}
}

// ServeIndex serves the app shell for a page route.
func (h *SPAHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(h.index)
}

// ServeAssets serves embedded static files under /assets/.
func (h *SPAHandler) ServeAssets(w http.ResponseWriter, r *http.Request) {
	// Long cache for fingerprinted assets
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, ".png"):
		w.Header().Set("Content-Type", "image/png")
	case strings.HasSuffix(path, ".svg"):
		w.Header().Set("Content-Type", "image/svg+xml")
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		w.Header().Set("Content-Type", "image/jpeg")
	}

	h.fileServer.ServeHTTP(w, r)
}

// NotFound redirects any unknown page route to the 404 page. API routes
// never reach this handler; the router matches them first.
func (h *SPAHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/404" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusNotFound)
		w.Write(h.index)
		return
	}
	http.Redirect(w, r, "/404", http.StatusFound)
}
