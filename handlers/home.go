package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"moviemirror/models"
	"moviemirror/services/catalog"
)

// HomeHandler serves the combined homepage payload so the frontend can
// render every rail from a single round-trip. Rails are fetched
// concurrently; a failed rail is logged and returned as nil rather than
// failing the whole page.
type HomeHandler struct {
	catalog *catalog.Service
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(catalogSvc *catalog.Service) *HomeHandler {
	return &HomeHandler{catalog: catalogSvc}
}

// HomeResponse is the combined payload returned by GET /api/home.
type HomeResponse struct {
	Trending        *models.MediaList `json:"trending"`
	PopularMovies   *models.MediaList `json:"popularMovies"`
	TopRatedMovies  *models.MediaList `json:"topRatedMovies"`
	PopularTVShows  *models.MediaList `json:"popularTvShows"`
	TopRatedTVShows *models.MediaList `json:"topRatedTvShows"`
}

// Bundle returns all homepage rails in a single response.
func (h *HomeHandler) Bundle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := HomeResponse{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(5)

	fetch := func(name string, run func() (*models.MediaList, error), assign func(*models.MediaList)) {
		p.Go(func() {
			list, err := run()
			if err != nil {
				log.Printf("[home] %s rail failed: %v", name, err)
				return
			}
			mu.Lock()
			assign(list)
			mu.Unlock()
		})
	}

	ctx := r.Context()
	fetch("trending", func() (*models.MediaList, error) {
		return h.catalog.Trending(ctx, "all", "week")
	}, func(l *models.MediaList) { resp.Trending = l })
	fetch("popular movies", func() (*models.MediaList, error) {
		return h.catalog.PopularMovies(ctx, 1)
	}, func(l *models.MediaList) { resp.PopularMovies = l })
	fetch("top rated movies", func() (*models.MediaList, error) {
		return h.catalog.TopRatedMovies(ctx, 1)
	}, func(l *models.MediaList) { resp.TopRatedMovies = l })
	fetch("popular tv", func() (*models.MediaList, error) {
		return h.catalog.PopularTVShows(ctx, 1)
	}, func(l *models.MediaList) { resp.PopularTVShows = l })
	fetch("top rated tv", func() (*models.MediaList, error) {
		return h.catalog.TopRatedTVShows(ctx, 1)
	}, func(l *models.MediaList) { resp.TopRatedTVShows = l })

	p.Wait()
	log.Printf("[home] bundle assembled in %dms", time.Since(start).Milliseconds())

	writeJSON(w, resp)
}
