package repositories

import (
	"context"

	"incubapp/internal/models"

	"github.com/google/uuid"
)

type InscriptionRepository interface {
	Create(ctx context.Context, ins *models.Inscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Inscription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, programmeID int64, limit, offset int) ([]*models.Inscription, error)
}

type inscriptionRepo struct {
	db Database
}

func NewInscriptionRepo(db Database) InscriptionRepository {
	return &inscriptionRepo{db: db}
}

func (r *inscriptionRepo) Create(ctx context.Context, ins *models.Inscription) error {
	query := `
		INSERT INTO inscriptions (id, programme_id, candidat_id, promotion, statut, date_entree, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, ins.ID, ins.ProgrammeID, ins.CandidateID, ins.Promotion, ins.Status, ins.EntryDate)
	return err
}

func (r *inscriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Inscription, error) {
	ins := &models.Inscription{}
	query := `
		SELECT id, programme_id, candidat_id, promotion, statut, date_entree, created_at, updated_at
		FROM inscriptions
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&ins.ID, &ins.ProgrammeID, &ins.CandidateID, &ins.Promotion, &ins.Status, &ins.EntryDate, &ins.CreatedAt, &ins.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ins, nil
}

func (r *inscriptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE inscriptions SET statut = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

func (r *inscriptionRepo) List(ctx context.Context, programmeID int64, limit, offset int) ([]*models.Inscription, error) {
	query := `
		SELECT id, programme_id, candidat_id, promotion, statut, date_entree, created_at, updated_at
		FROM inscriptions
		WHERE programme_id = $1
		ORDER BY date_entree DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, programmeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Inscription
	for rows.Next() {
		ins := &models.Inscription{}
		if err := rows.Scan(&ins.ID, &ins.ProgrammeID, &ins.CandidateID, &ins.Promotion, &ins.Status, &ins.EntryDate, &ins.CreatedAt, &ins.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, ins)
	}
	return items, rows.Err()
}
