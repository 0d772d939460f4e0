package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/S3OD177/price-monitor-sub000/internal/api"
	"github.com/S3OD177/price-monitor-sub000/internal/browser"
	"github.com/S3OD177/price-monitor-sub000/internal/cache"
	"github.com/S3OD177/price-monitor-sub000/internal/config"
	"github.com/S3OD177/price-monitor-sub000/internal/fetch"
	"github.com/S3OD177/price-monitor-sub000/internal/parser"
	"github.com/S3OD177/price-monitor-sub000/internal/ratelimit"
	"github.com/S3OD177/price-monitor-sub000/internal/scraper"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		logger.Error("failed to initialize fetcher", "error", err)
		os.Exit(1)
	}
	defer fetcher.Close()

	productCache, err := cache.New(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	}, logger)
	if err != nil {
		logger.Warn("cache disabled", "error", err)
		productCache = nil
	} else {
		defer productCache.Close()
	}

	scrapeService := scraper.New(fetcher, parser.NewProductParser(), logger)
	outbound := ratelimit.NewOutbound(cfg.Scraper.OutboundRate, 1)
	handlers := api.NewHandlers(scrapeService, productCache, outbound, logger, api.Options{
		BatchWorkers: cfg.Scraper.BatchWorkers,
		MaxBatchURLs: cfg.Scraper.MaxBatchURLs,
	})
	clientLimiter := ratelimit.NewClientLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(clientLimiter.Middleware)
		r.Post("/scrape", handlers.Scrape)
		r.Post("/scrape/batch", handlers.ScrapeBatch)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr, "browserFetch", cfg.Scraper.UseBrowser)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newFetcher picks rendered or plain fetching; the extraction pipeline is
// identical behind the interface.
func newFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	if !cfg.Scraper.UseBrowser {
		return fetch.NewHTTPFetcher(&fetch.Options{
			UserAgent:   cfg.Scraper.UserAgent,
			Timeout:     cfg.Scraper.FetchTimeout,
			MaxBodySize: cfg.Scraper.MaxBodySize,
		}), nil
	}

	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	opts.Timeout = cfg.Browser.Timeout
	opts.ViewportWidth = cfg.Browser.ViewportWidth
	opts.ViewportHeight = cfg.Browser.ViewportHeight
	opts.AcceptLanguage = cfg.Browser.AcceptLanguage
	opts.TimezoneID = cfg.Browser.TimezoneID
	opts.Locale = cfg.Browser.Locale
	if cfg.Scraper.UserAgent != "" {
		opts.UserAgent = cfg.Scraper.UserAgent
	}

	b, err := browser.New(opts)
	if err != nil {
		return nil, err
	}
	return fetch.NewBrowserFetcher(b), nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
