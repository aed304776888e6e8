package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"moviemirror/api"
	"moviemirror/config"
	"moviemirror/handlers"
	"moviemirror/internal/authstate"
	"moviemirror/services/accounts"
	"moviemirror/services/catalog"
	"moviemirror/services/history"
	"moviemirror/services/sessions"
	"moviemirror/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}))
	}

	accountsSvc, err := accounts.NewService(cfg.StorageDir)
	if err != nil {
		log.Fatalf("[main] accounts service: %v", err)
	}
	sessionsSvc, err := sessions.NewService(cfg.StorageDir, cfg.SessionDuration)
	if err != nil {
		log.Fatalf("[main] sessions service: %v", err)
	}
	historySvc, err := history.NewService(cfg.StorageDir)
	if err != nil {
		log.Fatalf("[main] history service: %v", err)
	}
	catalogSvc := catalog.NewService(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.TMDBImageBaseURL, cfg.Language, cfg.CacheDir, cfg.CacheTTLHours)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := authstate.NewStore(accountsSvc, sessionsSvc)
	store.Start(ctx)
	defer store.Close()

	authHandler := handlers.NewAuthHandler(store, sessionsSvc)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc)
	homeHandler := handlers.NewHomeHandler(catalogSvc)
	searchHandler := handlers.NewSearchHandler(catalogSvc, historySvc)
	playerHandler := handlers.NewPlayerHandler(cfg.EmbedBaseURL)
	profileHandler := handlers.NewProfileHandler(accountsSvc, sessionsSvc, historySvc)
	settingsHandler := handlers.NewSettingsHandler(catalogSvc)
	spa := handlers.NewSPAHandler()

	router := utils.NewRouter()

	// Auth endpoints, rate limited per IP
	authLimiter := api.NewIPRateLimiter(rate.Every(time.Minute/time.Duration(cfg.AuthRatePerMinute)), cfg.AuthRateBurst)
	router.HandleFunc("/api/auth/login", api.RateLimitHandlerFunc(authLimiter, authHandler.Login)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/auth/register", api.RateLimitHandlerFunc(authLimiter, authHandler.Register)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/auth/logout", authHandler.Logout).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/auth/me", authHandler.Me).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/auth/refresh", authHandler.Refresh).Methods(http.MethodPost, http.MethodOptions)

	// Browsing endpoints, open to anonymous visitors
	router.HandleFunc("/api/home", homeHandler.Bundle).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/trending", catalogHandler.Trending).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/movies/{collection}", catalogHandler.MovieCollection).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/movie/{id:[0-9]+}", catalogHandler.MovieDetails).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/tv/{id:[0-9]+}", catalogHandler.TVShowDetails).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/tv/{id:[0-9]+}/season/{season:[0-9]+}", catalogHandler.SeasonDetails).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/tv/{collection}", catalogHandler.TVCollection).Methods(http.MethodGet, http.MethodOptions)

	// Search endpoints; anonymous visitors share one controller
	router.HandleFunc("/api/search", searchHandler.Submit).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/search", searchHandler.State).Methods(http.MethodGet)
	router.HandleFunc("/api/search", searchHandler.Clear).Methods(http.MethodDelete)
	router.HandleFunc("/api/search/page", searchHandler.ChangePage).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/search/history", searchHandler.History).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/search/history/select", searchHandler.SelectHistory).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/search/history", searchHandler.ClearHistory).Methods(http.MethodDelete)

	// Session-guarded endpoints
	guarded := router.PathPrefix("/api").Subrouter()
	guarded.Use(api.SessionMiddleware(store))
	guarded.HandleFunc("/profile", profileHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	guarded.HandleFunc("/profile/history", profileHandler.ClearHistory).Methods(http.MethodDelete, http.MethodOptions)
	guarded.HandleFunc("/profile/sessions", profileHandler.RevokeAllSessions).Methods(http.MethodDelete, http.MethodOptions)
	guarded.HandleFunc("/player/movie/{id:[0-9]+}", playerHandler.Movie).Methods(http.MethodGet, http.MethodOptions)
	guarded.HandleFunc("/player/tv/{id:[0-9]+}", playerHandler.TV).Methods(http.MethodGet, http.MethodOptions)
	guarded.HandleFunc("/settings/catalog-key", settingsHandler.UpdateCatalogKey).Methods(http.MethodPut, http.MethodOptions)

	// Static assets and SPA page routes
	router.PathPrefix("/assets/").HandlerFunc(spa.ServeAssets).Methods(http.MethodGet)
	for _, page := range []string{"/", "/movies", "/tv-shows", "/search", "/login", "/register"} {
		router.HandleFunc(page, spa.ServeIndex).Methods(http.MethodGet)
	}
	router.HandleFunc("/movie/{id:[0-9]+}", spa.ServeIndex).Methods(http.MethodGet)
	router.HandleFunc("/tv/{id:[0-9]+}", spa.ServeIndex).Methods(http.MethodGet)
	router.Handle("/profile", api.PageGuardMiddleware(store)(http.HandlerFunc(spa.ServeIndex))).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(spa.NotFound)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
