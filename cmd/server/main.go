// CodeXR - AR/VR coding assistant server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/codexr/internal/api"
	"github.com/ashureev/codexr/internal/auth"
	"github.com/ashureev/codexr/internal/config"
	"github.com/ashureev/codexr/internal/grpchealth"
	"github.com/ashureev/codexr/internal/history"
	"github.com/ashureev/codexr/internal/identity"
	"github.com/ashureev/codexr/internal/llm"
	"github.com/ashureev/codexr/internal/middleware"
	"github.com/ashureev/codexr/internal/oauth"
	"github.com/ashureev/codexr/internal/pipeline"
	"github.com/ashureev/codexr/internal/search"
	"github.com/ashureev/codexr/internal/store"
	"github.com/ashureev/codexr/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	for _, w := range cfg.Warnings() {
		slog.Warn(w)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "provider", cfg.Model.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()
	slog.Info("Database connected", "path", cfg.DBPath)

	historyStore, err := history.NewFileStore(cfg.HistoryDir)
	if err != nil {
		slog.Error("Failed to initialize history store", "error", err)
		os.Exit(1)
	}

	provider, err := llm.New(ctx, cfg.Model)
	if err != nil {
		slog.Error("Failed to initialize model provider", "error", err)
		os.Exit(1)
	}
	if !llm.Configured(provider) {
		slog.Warn("Model provider has no credentials, answers will report a provider error", "provider", provider.Name())
	}

	searcher := search.NewClient(cfg.Search)
	answers := pipeline.New(provider, searcher, pipeline.Options{
		MaxOutputTokens:  cfg.Model.MaxOutputTokens,
		Temperature:      cfg.Model.Temperature,
		ModelTimeout:     cfg.Model.Timeout,
		MaxSearchResults: cfg.Search.MaxResults,
		Logger:           logger,
	})

	authService := auth.NewService(repo, cfg.SessionTTL)
	oauthHandler := oauth.NewHandler(cfg.OAuth, cfg.SecretKey, authService, cfg.FrontendURL, cfg.IsDevelopment())

	apiHandler := api.NewHandler(api.Deps{
		Accounts:            authService,
		Answerer:            answers,
		History:             historyStore,
		DB:                  repo,
		FrontendURL:         cfg.FrontendURL,
		IsDev:               cfg.IsDevelopment(),
		LiveSearchAvailable: searcher.Enabled(),
		GoogleLoginEnabled:  oauthHandler.Enabled(),
	})

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(allowedOrigins(cfg)))
	r.Use(identity.Middleware(authService))

	apiHandler.RegisterRoutes(r)
	r.Get("/auth/google/login", oauthHandler.Login)
	r.Get("/auth/google/callback", oauthHandler.Callback)
	r.Handle("/metrics", promhttp.Handler())

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// WriteTimeout must cover a full model call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Model.Timeout + cfg.Search.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	auth.StartSessionSweeper(ctx, repo, cfg.SessionSweepInterval)

	if cfg.GRPCPort != "" {
		hs := grpchealth.NewServer(repo, 30*time.Second)
		go func() {
			if err := hs.Serve(ctx, ":"+cfg.GRPCPort); err != nil {
				slog.Error("gRPC health server failed", "error", err)
			}
		}()
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{cfg.FrontendURL}
}
