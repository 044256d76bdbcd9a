package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/MusHusKat/investment-tracker/internal/adapter/http"
	"github.com/MusHusKat/investment-tracker/internal/adapter/repository/postgres"
	"github.com/MusHusKat/investment-tracker/internal/config"
	"github.com/MusHusKat/investment-tracker/internal/scheduler"
	"github.com/MusHusKat/investment-tracker/internal/usecase/importer"
	"github.com/MusHusKat/investment-tracker/internal/usecase/kpi"
	"github.com/MusHusKat/investment-tracker/internal/usecase/projection"
	"github.com/MusHusKat/investment-tracker/internal/usecase/seeder"
	"github.com/MusHusKat/investment-tracker/internal/usecase/snapshot"
)

const defaultConfigPath = "config.yaml"

func main() {
	// 1. Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", configPath, err)
	}

	// Add 2-second delay to ensure Postgres is up (Simple retry)
	time.Sleep(2 * time.Second)

	db, err := postgres.NewDB(cfg.Database.ConnString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. Initialize Repositories (Postgres)
	propertyRepo := postgres.NewPropertyRepository(db)
	portfolioRepo := postgres.NewPortfolioRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)

	// 3. Initialize Services (Use Cases)
	kpiService := kpi.NewService(propertyRepo, eventRepo)
	projectionService := projection.NewService(propertyRepo, portfolioRepo, eventRepo)
	snapshotService := snapshot.NewService(propertyRepo, eventRepo, snapshotRepo)
	importService := importer.NewService(propertyRepo, snapshotRepo)

	// Seed demo data when enabled
	if cfg.Seed.Demo {
		demoSeeder := seeder.NewDemoSeeder(propertyRepo, portfolioRepo, eventRepo)
		if err := demoSeeder.Seed(context.Background()); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Println("Demo data seeded successfully")
	}

	// 4. Start nightly snapshot materialization
	cronScheduler := scheduler.NewScheduler(snapshotService, cfg)
	if err := cronScheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer cronScheduler.Stop()

	// 5. Start HTTP server
	server := httpadapter.NewServer(
		propertyRepo,
		portfolioRepo,
		kpiService,
		projectionService,
		snapshotService,
		importService,
	)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(cfg),
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP server: %v", err)
		}
	}()

	// Graceful shutdown
	waitForShutdown(httpServer)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(httpServer *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("HTTP server stopped")
}
