package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"moviemirror/models"
)

// newTestService points a catalog service at a stub TMDB server.
func newTestService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc := NewService("test-key", srv.URL, "https://image.example/t/p", "en-US", t.TempDir(), 24)
	return svc, srv
}

func TestSearch_FiltersPersonResults(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/multi" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("missing api_key param")
		}
		if r.URL.Query().Get("include_adult") != "false" {
			t.Errorf("expected include_adult=false")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 1, "media_type": "movie", "title": "Alpha"},
				{"id": 2, "media_type": "person", "name": "Some Actor"},
				{"id": 3, "media_type": "tv", "name": "Beta"}
			],
			"total_pages": 1,
			"total_results": 3
		}`))
	}))

	list, err := svc.Search(context.Background(), "alpha", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(list.Results) != 2 {
		t.Fatalf("expected 2 results after filtering, got %d", len(list.Results))
	}
	if list.Results[0].MediaType != models.MediaTypeMovie {
		t.Errorf("expected first result movie, got %q", list.Results[0].MediaType)
	}
	if list.Results[1].MediaType != models.MediaTypeTV {
		t.Errorf("expected second result tv, got %q", list.Results[1].MediaType)
	}
}

func TestSearch_EmptyQueryDoesNotHitAPI(t *testing.T) {
	var calls int32
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	list, err := svc.Search(context.Background(), "   ", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(list.Results) != 0 {
		t.Errorf("expected empty results, got %d", len(list.Results))
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("expected no API calls for empty query, got %d", calls)
	}
}

func TestSearch_KeyedCacheShortCircuits(t *testing.T) {
	var calls int32
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"page": 1, "results": [{"id": 9, "media_type": "movie", "title": "Cached"}], "total_pages": 3, "total_results": 41}`))
	}))

	ctx := context.Background()
	first, err := svc.Search(ctx, "cached", 1)
	if err != nil {
		t.Fatalf("first Search failed: %v", err)
	}
	second, err := svc.Search(ctx, "cached", 1)
	if err != nil {
		t.Fatalf("second Search failed: %v", err)
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected 1 upstream call for identical key, got %d", calls)
	}
	if first.TotalPages != second.TotalPages || len(first.Results) != len(second.Results) {
		t.Errorf("cached result differs from original")
	}

	// A different page is a different key and must fetch again.
	if _, err := svc.Search(ctx, "cached", 2); err != nil {
		t.Fatalf("page 2 Search failed: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 upstream calls after new key, got %d", calls)
	}
}

func TestUpdateAPIKey_ClearsCacheAndUsesNewKey(t *testing.T) {
	var mu sync.Mutex
	var keys []string
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keys = append(keys, r.URL.Query().Get("api_key"))
		mu.Unlock()
		w.Write([]byte(`{"page": 1, "results": [], "total_pages": 1, "total_results": 0}`))
	}))

	ctx := context.Background()
	if _, err := svc.PopularMovies(ctx, 1); err != nil {
		t.Fatalf("PopularMovies failed: %v", err)
	}
	if _, err := svc.PopularMovies(ctx, 1); err != nil {
		t.Fatalf("cached PopularMovies failed: %v", err)
	}

	svc.UpdateAPIKey("rotated-key")

	if _, err := svc.PopularMovies(ctx, 1); err != nil {
		t.Fatalf("PopularMovies after key rotation failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(keys) != 2 {
		t.Fatalf("expected cache cleared on rotation (2 upstream calls), got %d", len(keys))
	}
	if keys[0] != "test-key" || keys[1] != "rotated-key" {
		t.Errorf("unexpected api keys %v", keys)
	}
}

func TestCollection_StampsMediaType(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/popular" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("expected page=2, got %q", r.URL.Query().Get("page"))
		}
		w.Write([]byte(`{"page": 2, "results": [{"id": 5, "title": "Untagged"}], "total_pages": 10, "total_results": 200}`))
	}))

	list, err := svc.PopularMovies(context.Background(), 2)
	if err != nil {
		t.Fatalf("PopularMovies failed: %v", err)
	}
	if len(list.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(list.Results))
	}
	if list.Results[0].MediaType != models.MediaTypeMovie {
		t.Errorf("expected media_type stamped movie, got %q", list.Results[0].MediaType)
	}
}

func TestMovieDetails_AppendsRelations(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "videos,credits,similar,recommendations" {
			t.Errorf("unexpected append_to_response %q", got)
		}
		w.Write([]byte(`{
			"id": 603,
			"title": "The Matrix",
			"videos": {"results": [{"id": "v1", "key": "abc", "site": "YouTube", "type": "Trailer", "name": "Official"}]},
			"similar": {"results": [{"id": 604, "title": "Sequel"}]}
		}`))
	}))

	movie, err := svc.MovieDetails(context.Background(), 603)
	if err != nil {
		t.Fatalf("MovieDetails failed: %v", err)
	}
	if movie.Title != "The Matrix" {
		t.Errorf("expected title 'The Matrix', got %q", movie.Title)
	}
	if movie.Videos == nil || len(movie.Videos.Results) != 1 {
		t.Fatalf("expected appended videos")
	}
	if movie.Similar == nil || movie.Similar.Results[0].MediaType != models.MediaTypeMovie {
		t.Errorf("expected similar items stamped as movies")
	}
}

func TestSeasonDetails_ReturnsEpisodes(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1399/season/1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"id": 3624, "name": "Season 1", "season_number": 1, "episodes": [{"id": 63056, "name": "Winter Is Coming", "episode_number": 1, "season_number": 1}]}`))
	}))

	season, err := svc.SeasonDetails(context.Background(), 1399, 1)
	if err != nil {
		t.Fatalf("SeasonDetails failed: %v", err)
	}
	if len(season.Episodes) != 1 || season.Episodes[0].EpisodeNumber != 1 {
		t.Errorf("expected 1 episode, got %+v", season.Episodes)
	}
}

func TestTrending_RejectsUnknownMediaType(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API call to %q", r.URL.Path)
	}))

	if _, err := svc.Trending(context.Background(), "podcast", "week"); err == nil {
		t.Fatal("expected error for unsupported media type")
	}
}

func TestImageURL(t *testing.T) {
	svc := NewService("k", "http://example", "https://image.example/t/p", "en-US", t.TempDir(), 24)

	if got := svc.ImageURL("/abc.jpg", "w500"); got != "https://image.example/t/p/w500/abc.jpg" {
		t.Errorf("unexpected image URL %q", got)
	}
	if got := svc.ImageURL("abc.jpg", ""); got != "https://image.example/t/p/w500/abc.jpg" {
		t.Errorf("expected default size and leading slash, got %q", got)
	}
	if got := svc.ImageURL("", "w500"); got != "" {
		t.Errorf("expected empty URL for empty path, got %q", got)
	}
}
