package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"compliance-backend/internal/bootstrap"
	"compliance-backend/internal/seed"
	"compliance-backend/internal/shared/config"
	"compliance-backend/internal/shared/server"
	"compliance-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Configure(cfg.IsDevLike())
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildWith(ctx, cfg, bootstrap.Overrides{})
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	// In-memory dev servers start with the demo organization loaded.
	if cfg.IsDevLike() && app.DB == nil {
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

	addr := server.Addr(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		telemetry.Info("server.start", map[string]any{"addr": addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("server.shutdown_failed", map[string]any{"error": err.Error()})
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}
