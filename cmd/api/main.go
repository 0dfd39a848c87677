package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wkoning/portfolio-tracker/internal/api/handlers"
	"github.com/wkoning/portfolio-tracker/internal/api/middleware"
	"github.com/wkoning/portfolio-tracker/internal/config"
	"github.com/wkoning/portfolio-tracker/internal/domain"
	"github.com/wkoning/portfolio-tracker/internal/gcs"
	infraBQ "github.com/wkoning/portfolio-tracker/internal/infra/bigquery"
	"github.com/wkoning/portfolio-tracker/internal/logger"
	"github.com/wkoning/portfolio-tracker/internal/prices"
)

func main() {
	cfg := config.FromEnv()

	var (
		port   = flag.String("port", "8080", "HTTP server port")
		bucket = flag.String("bucket", cfg.Bucket, "GCS bucket for workbook archiving (or set GCS_BUCKET env)")
	)
	flag.Parse()
	cfg.Bucket = *bucket

	log := logger.New()

	if cfg.Bucket == "" {
		log.Warn().Msg("No GCS bucket configured - imported workbooks will not be archived")
	}

	ctx := context.Background()

	repo, err := infraBQ.NewRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository")
	}
	defer repo.Close()

	priceSvc := prices.NewService(log)

	portfolioHandler := handlers.NewPortfolioHandler(repo, priceSvc, domain.NewClassifier(), log)
	activityHandler := handlers.NewActivityHandler(repo, log)
	historyHandler := handlers.NewHistoryHandler(repo, log)
	profilesHandler := handlers.NewProfilesHandler(repo, log)
	importHandler := handlers.NewImportHandler(repo, gcs.Client{}, cfg.Bucket, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/holdings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			portfolioHandler.ListHoldings(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			activityHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			historyHandler.ListHistory(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/profiles", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			profilesHandler.ListProfiles(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/import", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			middleware.RequireAdmin(importHandler.Import)(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(repo, log)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
