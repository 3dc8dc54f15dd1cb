package main

// Load the demo organization into the configured database:
//   go run ./cmd/seed

import (
	"context"
	"log"

	"compliance-backend/internal/bootstrap"
	"compliance-backend/internal/seed"
	"compliance-backend/internal/shared/config"
	"compliance-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.IsDevLike())
	defer telemetry.Sync()
	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	if app.DB == nil {
		log.Fatal("database unavailable; refusing to seed in-memory repositories")
	}
	defer app.DB.Close()

	orgID, err := seed.Demo(ctx, seed.Target{
		Orgs:      app.OrganizationsRepo,
		Users:     app.UsersRepo,
		Folders:   app.FoldersRepo,
		Documents: app.DocumentsRepo,
		Index:     app.StaffIndex,
	})
	if err != nil {
		log.Fatalf("seed demo data: %v", err)
	}
	telemetry.Info("seed.loaded", map[string]any{"organization_id": orgID})
}
