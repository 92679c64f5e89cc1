package repositories

import (
	"context"

	"incubapp/internal/models"

	"github.com/google/uuid"
)

type JuryDecisionRepository interface {
	Create(ctx context.Context, d *models.JuryDecision) error
	GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (*models.JuryDecision, error)
	List(ctx context.Context, programmeID int64, limit, offset int) ([]*models.JuryDecision, error)
}

type juryDecisionRepo struct {
	db Database
}

func NewJuryDecisionRepo(db Database) JuryDecisionRepository {
	return &juryDecisionRepo{db: db}
}

func (r *juryDecisionRepo) Create(ctx context.Context, d *models.JuryDecision) error {
	query := `
		INSERT INTO decisions_jury (id, programme_id, candidat_id, decision, motivation, date_jury, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, d.ID, d.ProgrammeID, d.CandidateID, d.Decision, d.Motivation, d.JuryDate)
	return err
}

func (r *juryDecisionRepo) GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (*models.JuryDecision, error) {
	d := &models.JuryDecision{}
	query := `
		SELECT id, programme_id, candidat_id, decision, motivation, date_jury, created_at
		FROM decisions_jury
		WHERE candidat_id = $1
		ORDER BY date_jury DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, candidateID).Scan(&d.ID, &d.ProgrammeID, &d.CandidateID, &d.Decision, &d.Motivation, &d.JuryDate, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *juryDecisionRepo) List(ctx context.Context, programmeID int64, limit, offset int) ([]*models.JuryDecision, error) {
	query := `
		SELECT id, programme_id, candidat_id, decision, motivation, date_jury, created_at
		FROM decisions_jury
		WHERE programme_id = $1
		ORDER BY date_jury DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, programmeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.JuryDecision
	for rows.Next() {
		d := &models.JuryDecision{}
		if err := rows.Scan(&d.ID, &d.ProgrammeID, &d.CandidateID, &d.Decision, &d.Motivation, &d.JuryDate, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
