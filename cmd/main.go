package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"incubapp/internal/caching"
	"incubapp/internal/config"
	"incubapp/internal/handlers"
	"incubapp/internal/middleware"
	"incubapp/internal/monitoring"
	"incubapp/internal/repositories"
	"incubapp/internal/schema"
	"incubapp/internal/services"
	"incubapp/pkg/database"
)

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

	cache := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unreachable, caching degraded")
	}

	storage, err := services.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to object storage")
	}
	if err := storage.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
		log.Fatal().Err(err).Str("bucket", cfg.Minio.Bucket).Msg("Failed to ensure archive bucket")
	}

	schemaService := schema.NewService(pool, schema.NewBinder(), log.Logger)

	programmeRepo := repositories.NewProgrammeRepo(pool)
	archiveRepo := repositories.NewArchiveRepo(pool)
	cleanupRepo := repositories.NewCleanupRepo(pool)

	programmeService := services.NewProgrammeService(programmeRepo, schemaService, cache)
	archiveService := services.NewArchiveService(archiveRepo, schemaService, storage, cfg.Minio.Bucket, cfg.Archive.WorkDir, cfg.Archive.Retention)
	cleanupService := services.NewCleanupService(cleanupRepo, pool)

	auth, err := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.JWKSURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth middleware")
	}
	router := middleware.NewSchemaRouter(middleware.PoolSessionFactory(pool), programmeService)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.Logger())

	healthHandlers := handlers.NewHealthHandlers(pool, cache)
	e.GET("/health", healthHandlers.Health)
	e.GET("/ready", healthHandlers.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1", auth)

	programmeHandlers := handlers.NewProgrammeHandlers(programmeService)
	v1.POST("/programmes", programmeHandlers.CreateProgramme)
	v1.GET("/programmes", programmeHandlers.ListProgrammes)
	v1.GET("/programmes/:id", programmeHandlers.GetProgramme)
	v1.GET("/programmes/code/:code", programmeHandlers.GetProgrammeByCode)
	v1.PUT("/programmes/:id", programmeHandlers.UpdateProgramme)
	v1.DELETE("/programmes/:id", programmeHandlers.DeleteProgramme)

	// Candidate routes run inside the programme schema selected by the
	// routing middleware.
	routed := v1.Group("/candidats", router.Route(), middleware.RequireProgramme())
	candidateHandlers := handlers.NewCandidateHandlers(programmeService)
	routed.POST("", candidateHandlers.CreateCandidate)
	routed.GET("", candidateHandlers.ListCandidates)
	routed.GET("/:id", candidateHandlers.GetCandidate)
	routed.PUT("/:id", candidateHandlers.UpdateCandidate)
	routed.DELETE("/:id", candidateHandlers.DeleteCandidate)

	dossierHandlers := handlers.NewDossierHandlers(programmeService)
	routed.GET("/:id/entreprise", dossierHandlers.GetCandidateEnterprise)
	routed.GET("/:id/documents", dossierHandlers.ListCandidateDocuments)
	routed.GET("/:id/eligibilite", dossierHandlers.GetCandidateEligibility)

	dossier := v1.Group("", router.Route(), middleware.RequireProgramme())
	dossier.POST("/preinscriptions", dossierHandlers.CreatePreinscription)
	dossier.GET("/preinscriptions", dossierHandlers.ListPreinscriptions)
	dossier.PUT("/preinscriptions/:id/statut", dossierHandlers.UpdatePreinscriptionStatus)
	dossier.POST("/inscriptions", dossierHandlers.CreateInscription)
	dossier.GET("/inscriptions", dossierHandlers.ListInscriptions)
	dossier.POST("/entreprises", dossierHandlers.CreateEnterprise)
	dossier.POST("/documents", dossierHandlers.CreateDocument)
	dossier.POST("/eligibilites", dossierHandlers.CreateEligibility)
	dossier.POST("/decisions-jury", dossierHandlers.CreateJuryDecision)
	dossier.GET("/decisions-jury", dossierHandlers.ListJuryDecisions)

	admin := v1.Group("/admin")
	schemaHandlers := handlers.NewSchemaAdminHandlers(schemaService, cache, cfg.Archive.WorkDir)
	admin.POST("/schemas/:code", schemaHandlers.CreateSchema)
	admin.POST("/schemas/:code/migrate", schemaHandlers.MigrateData)
	admin.POST("/schemas/:code/backup", schemaHandlers.BackupSchema)
	admin.DELETE("/schemas/:code", schemaHandlers.DropSchema)
	admin.GET("/schemas/tables", schemaHandlers.GetTables)
	admin.GET("/schemas/:code/stats", schemaHandlers.GetStats)

	archiveHandlers := handlers.NewArchiveHandlers(archiveService)
	admin.POST("/archives", archiveHandlers.CreateArchive)
	admin.GET("/archives", archiveHandlers.ListArchives)
	admin.GET("/archives/:id", archiveHandlers.GetArchive)
	admin.DELETE("/archives/:id", archiveHandlers.DeleteArchive)

	cleanupHandlers := handlers.NewCleanupHandlers(cleanupService)
	admin.POST("/cleanup/rules", cleanupHandlers.CreateRule)
	admin.GET("/cleanup/rules", cleanupHandlers.ListRules)
	admin.PUT("/cleanup/rules/:id", cleanupHandlers.UpdateRule)
	admin.DELETE("/cleanup/rules/:id", cleanupHandlers.DeleteRule)
	admin.POST("/cleanup/rules/:id/run", cleanupHandlers.RunRule)
	admin.POST("/cleanup/run", cleanupHandlers.RunActiveRules)

	go func() {
		addr := ":" + cfg.Server.Port
		log.Info().Str("addr", addr).Msg("Starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
