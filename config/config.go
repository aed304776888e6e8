package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type Config struct {
	ListenAddr string
	StorageDir string
	CacheDir   string

	TMDBAPIKey       string
	TMDBBaseURL      string
	TMDBImageBaseURL string
	Language         string
	CacheTTLHours    int

	EmbedBaseURL string

	SessionDuration time.Duration

	// Auth endpoint rate limiting (requests per minute per IP).
	AuthRatePerMinute int
	AuthRateBurst     int

	LogFile string
}

const (
	defaultListenAddr    = ":8585"
	defaultTMDBBaseURL   = "https://api.themoviedb.org/3"
	defaultImageBaseURL  = "https://image.tmdb.org/t/p"
	defaultEmbedBaseURL  = "https://vidsrc.to/embed"
	defaultLanguage      = "en-US"
	defaultCacheTTLHours = 24
	defaultSessionHours  = 30 * 24
	defaultAuthRate      = 10
	defaultAuthBurst     = 5
)

// Load reads configuration from the environment. A missing TMDB API key
// is an error since every catalog operation needs it.
func Load() (*Config, error) {
	// Best effort; absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:        envOr("MOVIEMIRROR_ADDR", defaultListenAddr),
		StorageDir:        envOr("MOVIEMIRROR_STORAGE_DIR", "data"),
		CacheDir:          envOr("MOVIEMIRROR_CACHE_DIR", "cache"),
		TMDBAPIKey:        os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL:       envOr("TMDB_BASE_URL", defaultTMDBBaseURL),
		TMDBImageBaseURL:  envOr("TMDB_IMAGE_BASE_URL", defaultImageBaseURL),
		Language:          envOr("TMDB_LANGUAGE", defaultLanguage),
		CacheTTLHours:     envIntOr("MOVIEMIRROR_CACHE_TTL_HOURS", defaultCacheTTLHours),
		EmbedBaseURL:      envOr("MOVIEMIRROR_EMBED_BASE_URL", defaultEmbedBaseURL),
		SessionDuration:   time.Duration(envIntOr("MOVIEMIRROR_SESSION_HOURS", defaultSessionHours)) * time.Hour,
		AuthRatePerMinute: envIntOr("MOVIEMIRROR_AUTH_RATE_PER_MINUTE", defaultAuthRate),
		AuthRateBurst:     envIntOr("MOVIEMIRROR_AUTH_RATE_BURST", defaultAuthBurst),
		LogFile:           os.Getenv("MOVIEMIRROR_LOG_FILE"),
	}

	if cfg.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}
	if cfg.CacheTTLHours <= 0 {
		cfg.CacheTTLHours = defaultCacheTTLHours
	}
	if cfg.AuthRatePerMinute < 1 {
		cfg.AuthRatePerMinute = defaultAuthRate
	}
	if cfg.AuthRateBurst < 1 {
		cfg.AuthRateBurst = defaultAuthBurst
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
