package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"incubapp/internal/config"
	"incubapp/internal/jobs/background"
	"incubapp/internal/monitoring"
	"incubapp/internal/repositories"
	"incubapp/internal/schema"
	"incubapp/internal/services"
	"incubapp/pkg/database"
)

// Maintenance runner. Owns the timers so the API server never has to: it
// executes active cleanup rules and expires old archives on a schedule.
func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Server.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.URL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	monitoring.InitMetrics()

	storage, err := services.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to object storage")
	}

	schemaService := schema.NewService(pool, schema.NewBinder(), log.Logger)
	archiveService := services.NewArchiveService(
		repositories.NewArchiveRepo(pool), schemaService, storage,
		cfg.Minio.Bucket, cfg.Archive.WorkDir, cfg.Archive.Retention)
	cleanupService := services.NewCleanupService(repositories.NewCleanupRepo(pool), pool)

	scheduler, err := background.NewJobScheduler(cleanupService, archiveService,
		cfg.Cleanup.RuleInterval, cfg.Cleanup.ExpiryInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create job scheduler")
	}

	scheduler.Start()
	log.Info().Strs("jobs", scheduler.JobNames()).Msg("Cleanup runner started")

	<-ctx.Done()
	if err := scheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("Scheduler shutdown failed")
	}
}
