package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/railstack/layoutd/internal/config"
	"github.com/railstack/layoutd/internal/database"
	"github.com/railstack/layoutd/internal/handlers"
	"github.com/railstack/layoutd/internal/hardware"
	"github.com/railstack/layoutd/internal/services/control"
	"github.com/railstack/layoutd/internal/services/layout"
	"github.com/railstack/layoutd/internal/ws"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema (Critical for Zero-Config)
	log.Println("🚀 Synchronizing database schema...")
	if err := db.Migrate(); err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Wire services
	provider := hardware.NewMockProvider(cfg.HardwareMode, logger)
	dispatcher := control.NewDispatcher(provider, logger)
	layoutSvc := layout.NewService(db.DB, logger)
	hub := ws.NewHub(logger)

	router := handlers.NewRouter(db.DB, layoutSvc, dispatcher, hub, logger, cfg)

	// 5. Start server with graceful shutdown
	port := cfg.Port
	if port == "" {
		port = "3210"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Layout server starting on port %s [hardware: %s]\n", port, provider.Mode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// buildLogger assembles the structured logger. LOG_LEVEL picks the floor;
// development builds get console output, everything else JSON. An external
// sink (LOG_SINK_URL) is expected to tail the JSON stream, the same place
// the frontend forwards its own logs through /logging/submit.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Log.Level != "" {
		if err := level.Set(cfg.Log.Level); err != nil {
			return nil, err
		}
	}

	var zapCfg zap.Config
	if cfg.Env == "development" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Log.SinkURL != "" {
		logger = logger.With(zap.String("sink", cfg.Log.SinkURL))
	}
	return logger, nil
}
