package repositories

import (
	"context"

	"incubapp/internal/models"

	"github.com/google/uuid"
)

// CandidateRepository issues unqualified statements on purpose: the rows are
// found in the public schema or in a programme schema depending on the
// search path of the Database it was built on. Handlers pass the routing
// session from the request context.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	Update(ctx context.Context, candidate *models.Candidate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, programmeID int64, limit, offset int) ([]*models.Candidate, error)
	Search(ctx context.Context, programmeID int64, term string, limit int) ([]*models.Candidate, error)
}

type candidateRepo struct {
	db Database
}

func NewCandidateRepo(db Database) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Create(ctx context.Context, candidate *models.Candidate) error {
	query := `
		INSERT INTO candidats (id, programme_id, nom, prenom, email, telephone, statut, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, candidate.ID, candidate.ProgrammeID, candidate.LastName, candidate.FirstName, candidate.Email, candidate.Phone, candidate.Status)
	return err
}

func (r *candidateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	candidate := &models.Candidate{}
	query := `
		SELECT id, programme_id, nom, prenom, email, telephone, statut, created_at, updated_at
		FROM candidats
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&candidate.ID, &candidate.ProgrammeID, &candidate.LastName, &candidate.FirstName, &candidate.Email, &candidate.Phone, &candidate.Status, &candidate.CreatedAt, &candidate.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

func (r *candidateRepo) Update(ctx context.Context, candidate *models.Candidate) error {
	query := `
		UPDATE candidats
		SET nom = $1, prenom = $2, email = $3, telephone = $4, statut = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, candidate.LastName, candidate.FirstName, candidate.Email, candidate.Phone, candidate.Status, candidate.ID)
	return err
}

func (r *candidateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM candidats WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *candidateRepo) List(ctx context.Context, programmeID int64, limit, offset int) ([]*models.Candidate, error) {
	query := `
		SELECT id, programme_id, nom, prenom, email, telephone, statut, created_at, updated_at
		FROM candidats
		WHERE programme_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, programmeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCandidates(rows)
}

func (r *candidateRepo) Search(ctx context.Context, programmeID int64, term string, limit int) ([]*models.Candidate, error) {
	query := `
		SELECT id, programme_id, nom, prenom, email, telephone, statut, created_at, updated_at
		FROM candidats
		WHERE programme_id = $1 AND (nom ILIKE '%' || $2 || '%' OR prenom ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY nom, prenom
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, programmeID, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCandidates(rows)
}

func scanCandidates(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.Candidate, error) {
	var candidates []*models.Candidate
	for rows.Next() {
		candidate := &models.Candidate{}
		if err := rows.Scan(&candidate.ID, &candidate.ProgrammeID, &candidate.LastName, &candidate.FirstName, &candidate.Email, &candidate.Phone, &candidate.Status, &candidate.CreatedAt, &candidate.UpdatedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}
