package repositories

import (
	"context"

	"incubapp/internal/models"

	"github.com/google/uuid"
)

type PreinscriptionRepository interface {
	Create(ctx context.Context, p *models.Preinscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Preinscription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*models.Preinscription, error)
	List(ctx context.Context, programmeID int64, limit, offset int) ([]*models.Preinscription, error)
}

type preinscriptionRepo struct {
	db Database
}

func NewPreinscriptionRepo(db Database) PreinscriptionRepository {
	return &preinscriptionRepo{db: db}
}

func (r *preinscriptionRepo) Create(ctx context.Context, p *models.Preinscription) error {
	query := `
		INSERT INTO preinscriptions (id, programme_id, candidat_id, projet, source, statut, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.ProgrammeID, p.CandidateID, p.Project, p.Source, p.Status)
	return err
}

func (r *preinscriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Preinscription, error) {
	p := &models.Preinscription{}
	query := `
		SELECT id, programme_id, candidat_id, projet, source, statut, created_at, updated_at
		FROM preinscriptions
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.ProgrammeID, &p.CandidateID, &p.Project, &p.Source, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *preinscriptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE preinscriptions SET statut = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

func (r *preinscriptionRepo) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*models.Preinscription, error) {
	query := `
		SELECT id, programme_id, candidat_id, projet, source, statut, created_at, updated_at
		FROM preinscriptions
		WHERE candidat_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Preinscription
	for rows.Next() {
		p := &models.Preinscription{}
		if err := rows.Scan(&p.ID, &p.ProgrammeID, &p.CandidateID, &p.Project, &p.Source, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *preinscriptionRepo) List(ctx context.Context, programmeID int64, limit, offset int) ([]*models.Preinscription, error) {
	query := `
		SELECT id, programme_id, candidat_id, projet, source, statut, created_at, updated_at
		FROM preinscriptions
		WHERE programme_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, programmeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Preinscription
	for rows.Next() {
		p := &models.Preinscription{}
		if err := rows.Scan(&p.ID, &p.ProgrammeID, &p.CandidateID, &p.Project, &p.Source, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
