package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walkhub/internal/config"
	"walkhub/internal/database"
	"walkhub/internal/handlers"
	"walkhub/internal/logger"
	"walkhub/internal/manager"
	custommiddleware "walkhub/internal/middleware"
	"walkhub/internal/stats"
	"walkhub/internal/store"
	"walkhub/internal/version"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Command line flags
	port := flag.String("port", "", "Port to bind to (overrides PORT env var)")
	ip := flag.String("ip", "", "IP address to bind to (overrides IP env var)")
	managerURL := flag.String("manager-url", "", "Walks-manager API base URL (overrides MANAGER_API_URL env var)")
	managerKey := flag.String("manager-key", "", "Walks-manager API key (overrides MANAGER_API_KEY env var)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Set environment variables from flags
	if *port != "" {
		os.Setenv("PORT", *port)
	}
	if *ip != "" {
		os.Setenv("IP", *ip)
	}
	if *managerURL != "" {
		os.Setenv("MANAGER_API_URL", *managerURL)
	}
	if *managerKey != "" {
		os.Setenv("MANAGER_API_KEY", *managerKey)
	}
	if *debug {
		os.Setenv("DEBUG", "true")
	}

	cfg := config.Load()

	// Initialize logger
	log := logger.WithDebug(cfg.Debug)

	logger.Info("Starting walkhub", "version", version.GetVersion(),
		"walk_population", cfg.WalkPopulation, "social_population", cfg.SocialPopulation)

	// Require a mirror endpoint only when a calculator is manager-sourced
	if cfg.ManagerSourced() && cfg.ManagerAPIURL == "" {
		logger.Error("Walks-manager API URL is required when WALK_POPULATION or SOCIAL_POPULATION is walks-manager. Set MANAGER_API_URL or use the -manager-url flag.")
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		logger.Error("Failed to load report timezone", "timezone", cfg.ReportTimezone, "error", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := database.InitDB()
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	st := store.New(db)

	var remote stats.RemoteEventFetcher
	if cfg.ManagerSourced() {
		remote = manager.NewClient(manager.ClientConfig{
			BaseURL:   cfg.ManagerAPIURL,
			APIKey:    cfg.ManagerAPIKey,
			RateLimit: cfg.ManagerRateLimit,
			Logger:    log,
		})
	}

	engine := stats.NewEngine(stats.Config{
		WalkMode:   stats.Mode(cfg.WalkPopulation),
		SocialMode: stats.Mode(cfg.SocialPopulation),
		Location:   loc,
	}, st, st, st, st, remote, log)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	statsHandler := handlers.NewStatsHandler(engine, st, cfg)

	// API Routes with CORS
	r.Route("/api", func(r chi.Router) {
		r.Use(custommiddleware.CORS([]string{"*"}))
		r.Use(custommiddleware.Timeout(60 * time.Second))

		r.Post("/walks/agm-stats", statsHandler.AGMStats)
		r.Get("/walks/earliest-date", statsHandler.EarliestDate)
		r.Get("/walk-admin/event-stats", statsHandler.EventStats)
		r.Post("/walk-admin/bulk-delete", statsHandler.BulkDelete)
		r.Post("/walk-admin/bulk-update", statsHandler.BulkUpdate)
	})

	// Create server
	addr := cfg.BindIP + ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Gracefully shutdown with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server gracefully stopped")
}
