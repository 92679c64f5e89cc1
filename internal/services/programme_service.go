package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"incubapp/internal/caching"
	"incubapp/internal/models"
	"incubapp/internal/repositories"
	"incubapp/internal/schema"
)

const programmeCacheTTL = 1 * time.Hour

var (
	// ErrCodeImmutable is returned when an update attempts to change the code
	// of a programme whose schema already exists.
	ErrCodeImmutable = errors.New("programme code is immutable once its schema exists")

	// ErrSchemaStillExists is returned when deleting a programme whose schema
	// has not been dropped yet.
	ErrSchemaStillExists = errors.New("programme schema must be dropped before the programme is deleted")
)

type ProgrammeService interface {
	Create(ctx context.Context, req *CreateProgrammeRequest) (*models.Programme, error)
	GetByID(ctx context.Context, id int64) (*models.Programme, error)
	GetByCode(ctx context.Context, code string) (*models.Programme, error)
	Update(ctx context.Context, req *UpdateProgrammeRequest) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*models.Programme, error)
	Exists(ctx context.Context, code string) bool
}

// SchemaChecker is the slice of the schema service the programme service
// needs for lifecycle guards.
type SchemaChecker interface {
	SchemaExists(ctx context.Context, code string) (bool, error)
}

type programmeService struct {
	repo    repositories.ProgrammeRepository
	schemas SchemaChecker
	cache   caching.CacheService
}

func NewProgrammeService(repo repositories.ProgrammeRepository, schemas SchemaChecker, cache caching.CacheService) ProgrammeService {
	return &programmeService{repo: repo, schemas: schemas, cache: cache}
}

type CreateProgrammeRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type UpdateProgrammeRequest struct {
	ID     int64
	Code   string `json:"code"`
	Name   string `json:"name" validate:"required"`
	Active bool   `json:"active"`
}

func (s *programmeService) Create(ctx context.Context, req *CreateProgrammeRequest) (*models.Programme, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	// The code must survive the resolver gate or it can never be routed.
	if _, err := schema.Resolve(req.Code); err != nil {
		return nil, err
	}

	programme := &models.Programme{
		Code:   req.Code,
		Name:   req.Name,
		Active: true,
	}
	if err := s.repo.Create(ctx, programme); err != nil {
		return nil, err
	}
	return programme, nil
}

func (s *programmeService) GetByID(ctx context.Context, id int64) (*models.Programme, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *programmeService) GetByCode(ctx context.Context, code string) (*models.Programme, error) {
	if s.cache != nil {
		if programme, err := s.cache.GetProgramme(ctx, code); err == nil {
			return programme, nil
		}
	}

	programme, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProgramme(ctx, programme, programmeCacheTTL); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("Failed to cache programme")
		}
	}
	return programme, nil
}

func (s *programmeService) Update(ctx context.Context, req *UpdateProgrammeRequest) error {
	programme, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	if req.Code != "" && req.Code != programme.Code {
		exists, err := s.schemas.SchemaExists(ctx, programme.Code)
		if err != nil {
			return err
		}
		if exists {
			return ErrCodeImmutable
		}
		return errors.New("programme code changes are not supported")
	}

	programme.Name = req.Name
	programme.Active = req.Active
	if err := s.repo.Update(ctx, programme); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.DeleteProgramme(ctx, programme.Code); err != nil {
			log.Warn().Err(err).Str("code", programme.Code).Msg("Failed to invalidate programme cache")
		}
	}
	return nil
}

func (s *programmeService) Delete(ctx context.Context, id int64) error {
	programme, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	exists, err := s.schemas.SchemaExists(ctx, programme.Code)
	if err != nil {
		return err
	}
	if exists {
		return ErrSchemaStillExists
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.DeleteProgramme(ctx, programme.Code); err != nil {
			log.Warn().Err(err).Str("code", programme.Code).Msg("Failed to invalidate programme cache")
		}
	}
	return nil
}

func (s *programmeService) List(ctx context.Context, limit, offset int) ([]*models.Programme, error) {
	return s.repo.List(ctx, limit, offset)
}

// Exists reports whether an active programme with this code is registered.
// Used by the routing middleware, so it rides the programme cache.
func (s *programmeService) Exists(ctx context.Context, code string) bool {
	programme, err := s.GetByCode(ctx, code)
	return err == nil && programme.Active
}
