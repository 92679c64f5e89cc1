package repositories

import (
	"context"

	"incubapp/internal/models"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepo struct {
	db Database
}

func NewDocumentRepo(db Database) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, programme_id, candidat_id, type, chemin, taille, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, doc.ID, doc.ProgrammeID, doc.CandidateID, doc.Type, doc.Path, doc.Size)
	return err
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, programme_id, candidat_id, type, chemin, taille, created_at
		FROM documents
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&doc.ID, &doc.ProgrammeID, &doc.CandidateID, &doc.Type, &doc.Path, &doc.Size, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *documentRepo) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, programme_id, candidat_id, type, chemin, taille, created_at
		FROM documents
		WHERE candidat_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		if err := rows.Scan(&doc.ID, &doc.ProgrammeID, &doc.CandidateID, &doc.Type, &doc.Path, &doc.Size, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
