package repositories

import (
	"context"

	"incubapp/internal/models"

	"github.com/google/uuid"
)

type EnterpriseRepository interface {
	Create(ctx context.Context, e *models.Enterprise) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Enterprise, error)
	GetByCandidate(ctx context.Context, candidateID uuid.UUID) (*models.Enterprise, error)
	Update(ctx context.Context, e *models.Enterprise) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type enterpriseRepo struct {
	db Database
}

func NewEnterpriseRepo(db Database) EnterpriseRepository {
	return &enterpriseRepo{db: db}
}

func (r *enterpriseRepo) Create(ctx context.Context, e *models.Enterprise) error {
	query := `
		INSERT INTO entreprises (id, programme_id, candidat_id, raison_sociale, siret, forme_juridique, date_creation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, e.ID, e.ProgrammeID, e.CandidateID, e.LegalName, e.Siret, e.LegalForm, e.CreationDate)
	return err
}

func (r *enterpriseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Enterprise, error) {
	e := &models.Enterprise{}
	query := `
		SELECT id, programme_id, candidat_id, raison_sociale, siret, forme_juridique, date_creation, created_at, updated_at
		FROM entreprises
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.ProgrammeID, &e.CandidateID, &e.LegalName, &e.Siret, &e.LegalForm, &e.CreationDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *enterpriseRepo) GetByCandidate(ctx context.Context, candidateID uuid.UUID) (*models.Enterprise, error) {
	e := &models.Enterprise{}
	query := `
		SELECT id, programme_id, candidat_id, raison_sociale, siret, forme_juridique, date_creation, created_at, updated_at
		FROM entreprises
		WHERE candidat_id = $1
	`
	err := r.db.QueryRow(ctx, query, candidateID).Scan(&e.ID, &e.ProgrammeID, &e.CandidateID, &e.LegalName, &e.Siret, &e.LegalForm, &e.CreationDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *enterpriseRepo) Update(ctx context.Context, e *models.Enterprise) error {
	query := `
		UPDATE entreprises
		SET raison_sociale = $1, siret = $2, forme_juridique = $3, date_creation = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, e.LegalName, e.Siret, e.LegalForm, e.CreationDate, e.ID)
	return err
}

func (r *enterpriseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM entreprises WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
