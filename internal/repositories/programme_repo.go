package repositories

import (
	"context"

	"incubapp/internal/models"
)

type ProgrammeRepository interface {
	Create(ctx context.Context, programme *models.Programme) error
	GetByID(ctx context.Context, id int64) (*models.Programme, error)
	GetByCode(ctx context.Context, code string) (*models.Programme, error)
	Update(ctx context.Context, programme *models.Programme) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.Programme, error)
}

type programmeRepo struct {
	db Database
}

func NewProgrammeRepo(db Database) ProgrammeRepository {
	return &programmeRepo{db: db}
}

func (r *programmeRepo) Create(ctx context.Context, programme *models.Programme) error {
	query := `
		INSERT INTO programmes (code, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, programme.Code, programme.Name, programme.Active).
		Scan(&programme.ID, &programme.CreatedAt, &programme.UpdatedAt)
}

func (r *programmeRepo) GetByID(ctx context.Context, id int64) (*models.Programme, error) {
	programme := &models.Programme{}
	query := `
		SELECT id, code, name, active, created_at, updated_at
		FROM programmes
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&programme.ID, &programme.Code, &programme.Name, &programme.Active, &programme.CreatedAt, &programme.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return programme, nil
}

func (r *programmeRepo) GetByCode(ctx context.Context, code string) (*models.Programme, error) {
	programme := &models.Programme{}
	query := `
		SELECT id, code, name, active, created_at, updated_at
		FROM programmes
		WHERE code = $1
	`
	err := r.db.QueryRow(ctx, query, code).Scan(&programme.ID, &programme.Code, &programme.Name, &programme.Active, &programme.CreatedAt, &programme.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return programme, nil
}

// Update never touches the code column: the code is the schema mapping key
// and changing it would orphan an existing schema.
func (r *programmeRepo) Update(ctx context.Context, programme *models.Programme) error {
	query := `
		UPDATE programmes
		SET name = $1, active = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, programme.Name, programme.Active, programme.ID)
	return err
}

func (r *programmeRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM programmes WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *programmeRepo) List(ctx context.Context, limit, offset int) ([]*models.Programme, error) {
	query := `
		SELECT id, code, name, active, created_at, updated_at
		FROM programmes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programmes []*models.Programme
	for rows.Next() {
		programme := &models.Programme{}
		if err := rows.Scan(&programme.ID, &programme.Code, &programme.Name, &programme.Active, &programme.CreatedAt, &programme.UpdatedAt); err != nil {
			return nil, err
		}
		programmes = append(programmes, programme)
	}
	return programmes, rows.Err()
}
