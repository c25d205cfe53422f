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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/maxweather/dashboard/internal/api"
	"github.com/maxweather/dashboard/internal/cache"
	"github.com/maxweather/dashboard/internal/config"
	"github.com/maxweather/dashboard/internal/geometry"
	"github.com/maxweather/dashboard/internal/ingestion"
	"github.com/maxweather/dashboard/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	client := ingestion.NewClient(cfg.Upstream)
	zones := cache.NewZoneCache(client.FetchZoneGeometry)
	recon := geometry.NewReconstructor(zones, cfg.Zones.FallbackEvents)
	aggregator := ingestion.NewAggregator(client, recon, zones, cfg.Zones.PrefetchWorkers)
	alerts := cache.NewAlertCache(cfg.Cache.TTL, aggregator.FetchAll)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm the cache so the first page load doesn't wait on upstream.
	go func() {
		if _, _, err := alerts.Get(ctx); err != nil {
			slog.Warn("initial alert fetch failed", "error", err)
		} else {
			slog.Info("alert cache warmed", "zones", zones.Size())
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))

	handler := api.NewHandler(alerts)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
