package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"stockplan/internal/cache"
	"stockplan/internal/config"
	"stockplan/internal/drive"
	"stockplan/internal/repository/postgres"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	driveService := newDriveService(ctx, cfg)

	var datasetSync *drive.DatasetSync
	if driveService != nil {
		datasetSync = drive.NewDatasetSync(driveService, cfg.Drive.FolderID, cfg.Drive.FolderPath, cfg.App.DataDir)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	componentRepo := postgres.NewComponentRepository(db)

	recCache, err := cache.NewRecommendationCache(cfg.Cache)
	if err != nil {
		log.Printf("warning: cache unavailable, invalidation disabled: %v", err)
		recCache = cache.NewNoopRecommendationCache()
	}

	ingestService := drive.NewIngestService(datasetSync, componentRepo, recCache, cfg.App.DataDir)

	// Register routes
	r := mux.NewRouter()
	driveHandler := drive.NewHandler(driveService, ingestService)
	driveHandler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Ingest service starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// newDriveService authenticates against Drive from the configured
// credentials file or the GOOGLE_DRIVE_CREDENTIALS_JSON environment
// variable. Returns nil when neither is set; dataset refreshes then load
// the local directory only.
func newDriveService(ctx context.Context, cfg *config.Config) *drive.Service {
	if cfg.Drive.CredentialsFile != "" {
		svc, err := drive.NewServiceFromFile(ctx, cfg.Drive.CredentialsFile)
		if err != nil {
			log.Fatalf("Failed to initialize Google Drive service: %v", err)
		}
		return svc
	}

	if credsJSON := os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON"); credsJSON != "" {
		svc, err := drive.NewService(ctx, []byte(credsJSON))
		if err != nil {
			log.Fatalf("Failed to initialize Google Drive service: %v", err)
		}
		return svc
	}

	log.Println("Drive credentials not configured; dataset refresh will use the local directory only")
	return nil
}
