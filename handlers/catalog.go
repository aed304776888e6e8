package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"moviemirror/models"
	"moviemirror/services/catalog"
)

// CatalogHandler serves browsing endpoints backed by the catalog service.
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogSvc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalogSvc}
}

// Trending returns trending titles. Accepts ?type=all|movie|tv and
// ?window=day|week.
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	mediaType := r.URL.Query().Get("type")
	window := r.URL.Query().Get("window")

	list, err := h.catalog.Trending(r.Context(), mediaType, window)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, list)
}

// MovieCollection serves /api/movies/{collection}.
func (h *CatalogHandler) MovieCollection(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	var list *models.MediaList
	var err error
	switch mux.Vars(r)["collection"] {
	case "popular":
		list, err = h.catalog.PopularMovies(r.Context(), page)
	case "top_rated":
		list, err = h.catalog.TopRatedMovies(r.Context(), page)
	case "now_playing":
		list, err = h.catalog.NowPlayingMovies(r.Context(), page)
	default:
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, list)
}

// TVCollection serves /api/tv/{collection}.
func (h *CatalogHandler) TVCollection(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	var list *models.MediaList
	var err error
	switch mux.Vars(r)["collection"] {
	case "popular":
		list, err = h.catalog.PopularTVShows(r.Context(), page)
	case "top_rated":
		list, err = h.catalog.TopRatedTVShows(r.Context(), page)
	case "on_the_air":
		list, err = h.catalog.OnTheAirTVShows(r.Context(), page)
	default:
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, list)
}

// MovieDetails serves /api/movie/{id}.
func (h *CatalogHandler) MovieDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	movie, err := h.catalog.MovieDetails(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, movie)
}

// TVShowDetails serves /api/tv/{id}.
func (h *CatalogHandler) TVShowDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	show, err := h.catalog.TVShowDetails(r.Context(), id)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, show)
}

// SeasonDetails serves /api/tv/{id}/season/{season}.
func (h *CatalogHandler) SeasonDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	seasonNumber, err := strconv.Atoi(mux.Vars(r)["season"])
	if err != nil || seasonNumber < 0 {
		writeError(w, http.StatusBadRequest, "invalid season number")
		return
	}

	season, err := h.catalog.SeasonDetails(r.Context(), id, seasonNumber)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, season)
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeCatalogError maps catalog failures: 404s from the upstream API
// become 404s here, everything else is a bad gateway.
func writeCatalogError(w http.ResponseWriter, err error) {
	if catalog.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "title not found")
		return
	}
	writeError(w, http.StatusBadGateway, "catalog unavailable")
}
