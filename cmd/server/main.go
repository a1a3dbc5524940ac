package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"climate-compare/internal/config"
	"climate-compare/internal/handlers"
	"climate-compare/internal/models"
	"climate-compare/internal/repository"
	"climate-compare/internal/services"
	"climate-compare/pkg/logging"
	"climate-compare/pkg/metrics"
	"climate-compare/pkg/provider"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("climate-compare-api", version, logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting climate comparison API server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"smear_url":   cfg.Providers.SMEARTimeseriesURL,
		"statfi_url":  cfg.Providers.STATFIURL,
	})

	metricsCollector := metrics.NewCollector("climate_compare", prometheus.DefaultRegisterer)

	registries, err := models.LoadRegistries(cfg.Compare.RegistryPath)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load registries", logging.Fields{
			"path": cfg.Compare.RegistryPath,
		}, err)
	}

	// Upstream providers
	providerConfig := provider.DefaultConfig()
	providerConfig.Timeout = cfg.Providers.Timeout
	providerConfig.UserAgent = cfg.Providers.UserAgent
	client := provider.NewClient(providerConfig, logger, metricsCollector)

	repo := repository.NewProviderRepository(client, repository.Endpoints{
		SMEARTimeseries: cfg.Providers.SMEARTimeseriesURL,
		SMEARVariable:   cfg.Providers.SMEARVariableURL,
		STATFI:          cfg.Providers.STATFIURL,
	}, logger)

	// Initialize services
	smearService := services.NewSMEARService(repo, registries.Stations, cfg.Providers.SMEARInterval, logger, metricsCollector)
	statfiService := services.NewSTATFIService(repo, registries.Figures, logger, metricsCollector)
	compareService := services.NewCompareService(repo, registries, cfg.Providers.SMEARInterval, logger, metricsCollector)

	handler := handlers.NewCompareHandler(smearService, statfiService, compareService, cfg.STATFIYears(), logger, metricsCollector)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
