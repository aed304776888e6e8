package catalog

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"moviemirror/models"
)

// Service is the catalog facade. Every operation is a keyed fetch:
// responses are cached in a TTL file cache under a key derived from the
// endpoint and its parameters, so identical requests short-circuit to
// the cached result until the entry expires.
type Service struct {
	client       *tmdbClient
	cache        *fileCache
	imageBaseURL string
}

// NewService creates a catalog service backed by the TMDB API.
// cacheDir is the directory holding cached responses.
func NewService(apiKey, baseURL, imageBaseURL, language, cacheDir string, ttlHours int) *Service {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if imageBaseURL == "" {
		imageBaseURL = "https://image.tmdb.org/t/p"
	}
	return &Service{
		client:       newTMDBClient(apiKey, baseURL, language, &http.Client{}),
		cache:        newFileCache(filepath.Join(cacheDir, "catalog"), ttlHours),
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

// UpdateAPIKey swaps the API key and clears cached responses so fresh
// data is fetched with the new key.
func (s *Service) UpdateAPIKey(apiKey string) {
	s.client = newTMDBClient(apiKey, s.client.baseURL, s.client.language, s.client.httpc)
	if err := s.cache.clear(); err != nil {
		log.Printf("[catalog] warning: failed to clear cache: %v", err)
	}
}

// ImageURL resolves a poster/backdrop/still path against the image CDN.
// An empty path yields an empty URL.
func (s *Service) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.imageBaseURL + "/" + size + path
}

func cacheKey(parts ...string) string {
	h := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h[:])
}

// Trending returns trending titles for the media type (all|movie|tv)
// over the given window (day|week).
func (s *Service) Trending(ctx context.Context, mediaType, window string) (*models.MediaList, error) {
	switch mediaType {
	case "", "all":
		mediaType = "all"
	case "movie", "tv":
	default:
		return nil, fmt.Errorf("catalog: unsupported trending media type %q", mediaType)
	}
	if window != "day" {
		window = "week"
	}

	key := cacheKey("trending", mediaType, window)
	var cached models.MediaList
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	var list models.MediaList
	if err := s.client.doGET(ctx, "/trending/"+mediaType+"/"+window, nil, &list); err != nil {
		return nil, err
	}
	normalizeItems(list.Results, "")
	list.Results = dropUnknownKinds(list.Results)
	_ = s.cache.set(key, list)
	return &list, nil
}

// PopularMovies returns the popular movies collection page.
func (s *Service) PopularMovies(ctx context.Context, page int) (*models.MediaList, error) {
	return s.collection(ctx, "/movie/popular", models.MediaTypeMovie, page)
}

// TopRatedMovies returns the top rated movies collection page.
func (s *Service) TopRatedMovies(ctx context.Context, page int) (*models.MediaList, error) {
	return s.collection(ctx, "/movie/top_rated", models.MediaTypeMovie, page)
}

// NowPlayingMovies returns the now playing movies collection page.
func (s *Service) NowPlayingMovies(ctx context.Context, page int) (*models.MediaList, error) {
	return s.collection(ctx, "/movie/now_playing", models.MediaTypeMovie, page)
}

// PopularTVShows returns the popular TV shows collection page.
func (s *Service) PopularTVShows(ctx context.Context, page int) (*models.MediaList, error) {
	return s.collection(ctx, "/tv/popular", models.MediaTypeTV, page)
}

// TopRatedTVShows returns the top rated TV shows collection page.
func (s *Service) TopRatedTVShows(ctx context.Context, page int) (*models.MediaList, error) {
	return s.collection(ctx, "/tv/top_rated", models.MediaTypeTV, page)
}

// OnTheAirTVShows returns the currently airing TV shows collection page.
func (s *Service) OnTheAirTVShows(ctx context.Context, page int) (*models.MediaList, error) {
	return s.collection(ctx, "/tv/on_the_air", models.MediaTypeTV, page)
}

func (s *Service) collection(ctx context.Context, path string, kind models.MediaType, page int) (*models.MediaList, error) {
	if page < 1 {
		page = 1
	}

	key := cacheKey("collection", path, strconv.Itoa(page))
	var cached models.MediaList
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	var list models.MediaList
	if err := s.client.doGET(ctx, path, q, &list); err != nil {
		return nil, err
	}
	normalizeItems(list.Results, kind)
	_ = s.cache.set(key, list)
	return &list, nil
}

// MovieDetails returns full movie details with videos, credits, similar
// and recommendations appended.
func (s *Service) MovieDetails(ctx context.Context, id int64) (*models.Movie, error) {
	key := cacheKey("movie", strconv.FormatInt(id, 10))
	var cached models.Movie
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	q := url.Values{}
	q.Set("append_to_response", "videos,credits,similar,recommendations")
	var movie models.Movie
	if err := s.client.doGET(ctx, fmt.Sprintf("/movie/%d", id), q, &movie); err != nil {
		return nil, err
	}
	if movie.Similar != nil {
		normalizeItems(movie.Similar.Results, models.MediaTypeMovie)
	}
	if movie.Recommendations != nil {
		normalizeItems(movie.Recommendations.Results, "")
		movie.Recommendations.Results = dropUnknownKinds(movie.Recommendations.Results)
	}
	_ = s.cache.set(key, movie)
	return &movie, nil
}

// TVShowDetails returns full TV show details with videos, credits,
// similar and recommendations appended.
func (s *Service) TVShowDetails(ctx context.Context, id int64) (*models.TVShow, error) {
	key := cacheKey("tv", strconv.FormatInt(id, 10))
	var cached models.TVShow
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	q := url.Values{}
	q.Set("append_to_response", "videos,credits,similar,recommendations")
	var show models.TVShow
	if err := s.client.doGET(ctx, fmt.Sprintf("/tv/%d", id), q, &show); err != nil {
		return nil, err
	}
	if show.Similar != nil {
		normalizeItems(show.Similar.Results, models.MediaTypeTV)
	}
	if show.Recommendations != nil {
		normalizeItems(show.Recommendations.Results, "")
		show.Recommendations.Results = dropUnknownKinds(show.Recommendations.Results)
	}
	_ = s.cache.set(key, show)
	return &show, nil
}

// SeasonDetails returns a single season of a TV show including its
// episodes.
func (s *Service) SeasonDetails(ctx context.Context, id int64, seasonNumber int) (*models.Season, error) {
	key := cacheKey("season", strconv.FormatInt(id, 10), strconv.Itoa(seasonNumber))
	var cached models.Season
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	var season models.Season
	if err := s.client.doGET(ctx, fmt.Sprintf("/tv/%d/season/%d", id, seasonNumber), nil, &season); err != nil {
		return nil, err
	}
	_ = s.cache.set(key, season)
	return &season, nil
}

// Search runs a multi-type search for the query. Results are keyed by
// (query, page); person entries and unknown kinds are dropped so every
// returned item carries a movie or tv discriminator.
func (s *Service) Search(ctx context.Context, query string, page int) (*models.MediaList, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &models.MediaList{Page: 1, TotalPages: 0, Results: nil}, nil
	}
	if page < 1 {
		page = 1
	}

	key := cacheKey("search", query, strconv.Itoa(page))
	var cached models.MediaList
	if ok, _ := s.cache.get(key, &cached); ok {
		return &cached, nil
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("include_adult", "false")
	var list models.MediaList
	if err := s.client.doGET(ctx, "/search/multi", q, &list); err != nil {
		return nil, err
	}
	list.Results = dropUnknownKinds(list.Results)
	_ = s.cache.set(key, list)
	return &list, nil
}

// normalizeItems stamps the explicit media kind on items fetched from
// single-kind endpoints, which omit media_type in their responses.
func normalizeItems(items []models.MediaItem, kind models.MediaType) {
	for i := range items {
		if items[i].MediaType == "" && kind != "" {
			items[i].MediaType = kind
		}
	}
}

// dropUnknownKinds filters out person results and anything else that is
// neither movie- nor tv-tagged.
func dropUnknownKinds(items []models.MediaItem) []models.MediaItem {
	out := items[:0]
	for _, item := range items {
		if item.MediaType.Valid() {
			out = append(out, item)
		}
	}
	return out
}
