package repositories

import (
	"context"
	"time"

	"incubapp/internal/models"

	"github.com/google/uuid"
)

type ArchiveRepository interface {
	Create(ctx context.Context, archive *models.Archive) error
	Finalize(ctx context.Context, id uuid.UUID, path string, size int64) error
	Fail(ctx context.Context, id uuid.UUID, errMsg string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Archive, error)
	List(ctx context.Context, limit, offset int) ([]*models.Archive, error)
	ListExpired(ctx context.Context, now time.Time) ([]*models.Archive, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type archiveRepo struct {
	db Database
}

func NewArchiveRepo(db Database) ArchiveRepository {
	return &archiveRepo{db: db}
}

func (r *archiveRepo) Create(ctx context.Context, archive *models.Archive) error {
	query := `
		INSERT INTO archives (id, programme_code, type, status, operator, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, archive.ID, archive.Programme, archive.Type, archive.Status, archive.Operator, archive.ExpiresAt)
	return err
}

func (r *archiveRepo) Finalize(ctx context.Context, id uuid.UUID, path string, size int64) error {
	query := `
		UPDATE archives
		SET status = $1, path = $2, size = $3, completed_at = NOW()
		WHERE id = $4 AND status = $5
	`
	_, err := r.db.Exec(ctx, query, models.ArchiveStatusDone, path, size, id, models.ArchiveStatusInProgress)
	return err
}

func (r *archiveRepo) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE archives
		SET status = $1, error = $2, completed_at = NOW()
		WHERE id = $3 AND status = $4
	`
	_, err := r.db.Exec(ctx, query, models.ArchiveStatusFailed, errMsg, id, models.ArchiveStatusInProgress)
	return err
}

func (r *archiveRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Archive, error) {
	archive := &models.Archive{}
	query := `
		SELECT id, programme_code, type, status, path, size, error, operator, expires_at, created_at, completed_at
		FROM archives
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&archive.ID, &archive.Programme, &archive.Type, &archive.Status, &archive.Path, &archive.Size, &archive.Error, &archive.Operator, &archive.ExpiresAt, &archive.CreatedAt, &archive.CompletedAt)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

func (r *archiveRepo) List(ctx context.Context, limit, offset int) ([]*models.Archive, error) {
	query := `
		SELECT id, programme_code, type, status, path, size, error, operator, expires_at, created_at, completed_at
		FROM archives
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArchives(rows)
}

func (r *archiveRepo) ListExpired(ctx context.Context, now time.Time) ([]*models.Archive, error) {
	query := `
		SELECT id, programme_code, type, status, path, size, error, operator, expires_at, created_at, completed_at
		FROM archives
		WHERE status = $1 AND expires_at IS NOT NULL AND expires_at < $2
	`
	rows, err := r.db.Query(ctx, query, models.ArchiveStatusDone, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArchives(rows)
}

func (r *archiveRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM archives WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func scanArchives(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.Archive, error) {
	var archives []*models.Archive
	for rows.Next() {
		archive := &models.Archive{}
		if err := rows.Scan(&archive.ID, &archive.Programme, &archive.Type, &archive.Status, &archive.Path, &archive.Size, &archive.Error, &archive.Operator, &archive.ExpiresAt, &archive.CreatedAt, &archive.CompletedAt); err != nil {
			return nil, err
		}
		archives = append(archives, archive)
	}
	return archives, rows.Err()
}
