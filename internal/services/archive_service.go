package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"incubapp/internal/models"
	"incubapp/internal/monitoring"
	"incubapp/internal/repositories"
	"incubapp/internal/schema"
)

// SchemaBackuper is the slice of the schema service the archive subsystem
// depends on.
type SchemaBackuper interface {
	BackupSchema(ctx context.Context, code, dir, operator string) (*schema.BackupResult, error)
}

type ArchiveService interface {
	CreateArchive(ctx context.Context, programmeCode, operator string) (*models.Archive, error)
	GetArchive(ctx context.Context, id uuid.UUID) (*models.Archive, error)
	ListArchives(ctx context.Context, limit, offset int) ([]*models.Archive, error)
	DeleteArchive(ctx context.Context, id uuid.UUID) error
	ExpireArchives(ctx context.Context) (int, error)
}

type archiveService struct {
	repo      repositories.ArchiveRepository
	schemas   SchemaBackuper
	storage   StorageService
	bucket    string
	workDir   string
	retention time.Duration
}

func NewArchiveService(repo repositories.ArchiveRepository, schemas SchemaBackuper, storage StorageService, bucket, workDir string, retention time.Duration) ArchiveService {
	return &archiveService{
		repo:      repo,
		schemas:   schemas,
		storage:   storage,
		bucket:    bucket,
		workDir:   workDir,
		retention: retention,
	}
}

// CreateArchive exports the programme schema to a working directory, uploads
// the artifact to object storage and records it. The archive row is created
// in_progress first and finalized done or failed, so an operator can always
// see what happened.
func (s *archiveService) CreateArchive(ctx context.Context, programmeCode, operator string) (*models.Archive, error) {
	expiresAt := time.Now().Add(s.retention)
	archive := &models.Archive{
		ID:        uuid.New(),
		Programme: programmeCode,
		Type:      models.ArchiveTypeData,
		Status:    models.ArchiveStatusInProgress,
		Operator:  operator,
		ExpiresAt: &expiresAt,
	}
	if err := s.repo.Create(ctx, archive); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.workDir, fmt.Sprintf("archive-%s-%s", programmeCode, archive.ID))
	defer os.RemoveAll(dir)

	result, err := s.schemas.BackupSchema(ctx, programmeCode, dir, operator)
	if err != nil {
		return nil, s.fail(ctx, archive, err)
	}

	prefix := fmt.Sprintf("%s/%s", programmeCode, archive.ID)
	size, err := s.storage.UploadDirectory(ctx, s.bucket, prefix, result.Dir)
	if err != nil {
		return nil, s.fail(ctx, archive, err)
	}

	if err := s.repo.Finalize(ctx, archive.ID, prefix, size); err != nil {
		return nil, err
	}
	archive.Status = models.ArchiveStatusDone
	archive.Path = &prefix
	archive.Size = size

	monitoring.ArchivesCreated.WithLabelValues("done").Inc()
	log.Info().Str("programme", programmeCode).Str("archive", archive.ID.String()).Int64("size", size).Msg("Archive created")
	return archive, nil
}

func (s *archiveService) fail(ctx context.Context, archive *models.Archive, cause error) error {
	monitoring.ArchivesCreated.WithLabelValues("failed").Inc()
	if err := s.repo.Fail(ctx, archive.ID, cause.Error()); err != nil {
		log.Error().Err(err).Str("archive", archive.ID.String()).Msg("Failed to record archive failure")
	}
	return cause
}

func (s *archiveService) GetArchive(ctx context.Context, id uuid.UUID) (*models.Archive, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *archiveService) ListArchives(ctx context.Context, limit, offset int) ([]*models.Archive, error) {
	return s.repo.List(ctx, limit, offset)
}

// DeleteArchive removes the physical artifact first, then the record. A
// dangling record is recoverable; a dangling artifact is invisible.
func (s *archiveService) DeleteArchive(ctx context.Context, id uuid.UUID) error {
	archive, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if archive.Path != nil {
		if err := s.storage.RemovePrefix(ctx, s.bucket, *archive.Path); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, id)
}

// ExpireArchives deletes every archive past its expiry. Invoked by the
// cleanup runner, not by the server itself.
func (s *archiveService) ExpireArchives(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, archive := range expired {
		if err := s.DeleteArchive(ctx, archive.ID); err != nil {
			log.Error().Err(err).Str("archive", archive.ID.String()).Msg("Failed to expire archive")
			continue
		}
		deleted++
	}
	if deleted > 0 {
		log.Info().Int("count", deleted).Msg("Expired archives removed")
	}
	return deleted, nil
}
