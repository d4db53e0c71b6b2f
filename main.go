package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"medeasy/admin/internal/api"
	"medeasy/admin/internal/client"
	"medeasy/admin/internal/config"
	"medeasy/admin/internal/database"
	"medeasy/admin/internal/migrations"
	"medeasy/admin/internal/page"
	"medeasy/admin/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Fatalf("%v", err)
	}

	remote, err := client.New(cfg.APIBaseURL, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	opts := page.Options{ReadPolicy: page.SurfaceReadErrors}
	if cfg.SoftFailReads {
		opts.ReadPolicy = page.SoftFailReads
	}
	handler := api.New(session.NewStore(db, cfg.Secret), remote, opts, cfg.AllowedOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go handler.PurgeLoop(ctx, time.Hour)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("MedEasy admin console starting on :%s (api %s)", cfg.HTTPPort, cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
