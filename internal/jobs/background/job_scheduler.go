package background

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"incubapp/internal/services"
)

// JobScheduler runs the periodic maintenance work: cleanup rules and archive
// expiry. It lives in the cleanup runner process, not in the API server.
type JobScheduler struct {
	scheduler gocron.Scheduler
	cleanup   services.CleanupService
	archives  services.ArchiveService

	cleanupInterval time.Duration
	expiryInterval  time.Duration

	jobs map[string]gocron.Job
	mu   sync.RWMutex
}

// NewJobScheduler creates a scheduler with both maintenance jobs registered.
func NewJobScheduler(cleanup services.CleanupService, archives services.ArchiveService,
	cleanupInterval, expiryInterval time.Duration) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:       scheduler,
		cleanup:         cleanup,
		archives:        archives,
		cleanupInterval: cleanupInterval,
		expiryInterval:  expiryInterval,
		jobs:            make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Info().Msg("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Info().Msg("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	cleanupJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.cleanupInterval),
		gocron.NewTask(js.runCleanupRules, context.Background()),
		gocron.WithName("cleanup-rules"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	js.jobs["cleanup"] = cleanupJob

	expiryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.expiryInterval),
		gocron.NewTask(js.expireArchives, context.Background()),
		gocron.WithName("archive-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	js.jobs["archive-expiry"] = expiryJob

	return nil
}

func (js *JobScheduler) runCleanupRules(ctx context.Context) {
	logs, err := js.cleanup.RunActiveRules(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Cleanup run failed")
		return
	}
	var deleted int64
	for _, entry := range logs {
		deleted += entry.RowsDeleted
	}
	log.Info().Int("rules", len(logs)).Int64("rows_deleted", deleted).Msg("Cleanup run finished")
}

func (js *JobScheduler) expireArchives(ctx context.Context) {
	deleted, err := js.archives.ExpireArchives(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Archive expiry failed")
		return
	}
	if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("Archive expiry finished")
	}
}

// JobNames lists registered jobs, for the runner's startup log.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for _, job := range js.jobs {
		names = append(names, job.Name())
	}
	return names
}
