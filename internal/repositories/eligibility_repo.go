package repositories

import (
	"context"

	"incubapp/internal/models"

	"github.com/google/uuid"
)

type EligibilityRepository interface {
	Create(ctx context.Context, e *models.Eligibility) error
	GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (*models.Eligibility, error)
	ListEligible(ctx context.Context, programmeID int64) ([]*models.Eligibility, error)
}

type eligibilityRepo struct {
	db Database
}

func NewEligibilityRepo(db Database) EligibilityRepository {
	return &eligibilityRepo{db: db}
}

func (r *eligibilityRepo) Create(ctx context.Context, e *models.Eligibility) error {
	query := `
		INSERT INTO eligibilites (id, programme_id, candidat_id, score, seuil, eligible, commentaire, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, e.ID, e.ProgrammeID, e.CandidateID, e.Score, e.Threshold, e.Eligible, e.Comment)
	return err
}

func (r *eligibilityRepo) GetLatestByCandidate(ctx context.Context, candidateID uuid.UUID) (*models.Eligibility, error) {
	e := &models.Eligibility{}
	query := `
		SELECT id, programme_id, candidat_id, score, seuil, eligible, commentaire, created_at
		FROM eligibilites
		WHERE candidat_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, candidateID).Scan(&e.ID, &e.ProgrammeID, &e.CandidateID, &e.Score, &e.Threshold, &e.Eligible, &e.Comment, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eligibilityRepo) ListEligible(ctx context.Context, programmeID int64) ([]*models.Eligibility, error) {
	query := `
		SELECT id, programme_id, candidat_id, score, seuil, eligible, commentaire, created_at
		FROM eligibilites
		WHERE programme_id = $1 AND eligible = TRUE
		ORDER BY score DESC
	`
	rows, err := r.db.Query(ctx, query, programmeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Eligibility
	for rows.Next() {
		e := &models.Eligibility{}
		if err := rows.Scan(&e.ID, &e.ProgrammeID, &e.CandidateID, &e.Score, &e.Threshold, &e.Eligible, &e.Comment, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
