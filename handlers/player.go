package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// DefaultEmbedBaseURL is the default playback provider base.
const DefaultEmbedBaseURL = "https://vidsrc.to/embed"

// PlayerHandler builds embed URLs for the playback iframe. The server
// never proxies the stream; it only knows how to address the provider.
type PlayerHandler struct {
	embedBaseURL string
}

// NewPlayerHandler creates a player handler for the given provider base URL.
func NewPlayerHandler(embedBaseURL string) *PlayerHandler {
	if strings.TrimSpace(embedBaseURL) == "" {
		embedBaseURL = DefaultEmbedBaseURL
	}
	return &PlayerHandler{embedBaseURL: strings.TrimRight(embedBaseURL, "/")}
}

// MovieEmbedURL returns the embed URL for a movie.
func (h *PlayerHandler) MovieEmbedURL(id int64) string {
	return fmt.Sprintf("%s/movie/%d", h.embedBaseURL, id)
}

// TVEmbedURL returns the embed URL for a show. Season and episode are
// appended only when both are positive; otherwise the provider decides
// where playback starts.
func (h *PlayerHandler) TVEmbedURL(id int64, season, episode int) string {
	if season > 0 && episode > 0 {
		return fmt.Sprintf("%s/tv/%d/%d/%d", h.embedBaseURL, id, season, episode)
	}
	return fmt.Sprintf("%s/tv/%d", h.embedBaseURL, id)
}

// EmbedResponse is the payload for the player endpoints.
type EmbedResponse struct {
	EmbedURL string `json:"embedUrl"`
}

// Movie serves /api/player/movie/{id}.
func (h *PlayerHandler) Movie(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, EmbedResponse{EmbedURL: h.MovieEmbedURL(id)})
}

// TV serves /api/player/tv/{id} with optional ?season= and ?episode=.
func (h *PlayerHandler) TV(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	season, episode := 0, 0
	if v := q.Get("season"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid season")
			return
		}
		season = n
	}
	if v := q.Get("episode"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid episode")
			return
		}
		episode = n
	}
	if (season > 0) != (episode > 0) {
		writeError(w, http.StatusBadRequest, "season and episode must be provided together")
		return
	}

	writeJSON(w, EmbedResponse{EmbedURL: h.TVEmbedURL(id, season, episode)})
}
