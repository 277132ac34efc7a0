package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-climate-risk/internal/api"
	"github.com/mr1hm/go-climate-risk/internal/ingestion"
	"github.com/mr1hm/go-climate-risk/internal/logging"
	"github.com/mr1hm/go-climate-risk/internal/notify"
	"github.com/mr1hm/go-climate-risk/internal/pipeline"
	"github.com/mr1hm/go-climate-risk/internal/repository"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := openStore(cfg)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	var repo repository.SnapshotRepository
	if db != nil {
		defer db.Close()
		repo = db
	} else {
		slog.Info("snapshot store disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reload notices fan out to /api/stream subscribers
	broadcaster := notify.NewBroadcaster()

	mgr := ingestion.NewManager(cfg, pipeline.NewCache(), repo, broadcaster)
	if err := mgr.Start(ctx); err != nil {
		logging.Fatalf("Failed to load dataset: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // must stay false with wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS, "/health", "/api/stream"))

	handler := api.NewHandler(mgr, broadcaster)
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
	mgr.Stop()
	broadcaster.Close() // ends open streams

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
