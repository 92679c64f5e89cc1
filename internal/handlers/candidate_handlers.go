package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"incubapp/internal/common"
	"incubapp/internal/middleware"
	"incubapp/internal/models"
	"incubapp/internal/repositories"
	"incubapp/internal/services"
)

// CandidateHandlers handles candidate requests inside a routed programme
// schema. Every handler builds its repository over the request's routing
// session, so the statements run against the programme's own tables.
type CandidateHandlers struct {
	programmes services.ProgrammeService
}

func NewCandidateHandlers(programmes services.ProgrammeService) *CandidateHandlers {
	return &CandidateHandlers{programmes: programmes}
}

// routedRepo resolves the programme row and a candidate repository bound to
// the request's schema session. Requires the schema routing middleware.
func (h *CandidateHandlers) routedRepo(c echo.Context) (repositories.CandidateRepository, *models.Programme, error) {
	sess, ok := middleware.RoutingSessionFromContext(c)
	if !ok {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "A valid programme code is required")
	}
	code, _ := common.GetProgrammeCodeFromContext(c.Request().Context())
	programme, err := h.programmes.GetByCode(c.Request().Context(), code)
	if err != nil {
		// The error must be non-nil so callers stop here instead of
		// proceeding with a nil programme.
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, "Programme not found")
	}
	return repositories.NewCandidateRepo(sess), programme, nil
}

// CreateCandidateRequest represents the candidate creation payload
type CreateCandidateRequest struct {
	LastName  string  `json:"nom" validate:"required"`
	FirstName string  `json:"prenom" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"telephone"`
}

// CreateCandidate handles creating a candidate in the routed schema
func (h *CandidateHandlers) CreateCandidate(c echo.Context) error {
	repo, programme, err := h.routedRepo(c)
	if err != nil {
		return err
	}

	var req CreateCandidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.LastName == "" || req.FirstName == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Nom, prenom and email are required")
	}

	candidate := &models.Candidate{
		ID:          uuid.New(),
		ProgrammeID: programme.ID,
		LastName:    req.LastName,
		FirstName:   req.FirstName,
		Email:       req.Email,
		Phone:       req.Phone,
		Status:      models.CandidateStatusPreinscribed,
	}
	if err := repo.Create(c.Request().Context(), candidate); err != nil {
		return common.SendServerError(c, "Failed to create candidate")
	}
	return c.JSON(http.StatusCreated, candidate)
}

// GetCandidate handles getting a candidate by ID
func (h *CandidateHandlers) GetCandidate(c echo.Context) error {
	repo, _, err := h.routedRepo(c)
	if err != nil {
		return err
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	candidate, err := repo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "candidate")
		}
		return common.SendServerError(c, "Failed to get candidate")
	}
	return c.JSON(http.StatusOK, candidate)
}

// UpdateCandidateRequest represents the candidate update payload
type UpdateCandidateRequest struct {
	LastName  string  `json:"nom" validate:"required"`
	FirstName string  `json:"prenom" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"telephone"`
	Status    string  `json:"statut"`
}

// UpdateCandidate handles updating a candidate
func (h *CandidateHandlers) UpdateCandidate(c echo.Context) error {
	repo, _, err := h.routedRepo(c)
	if err != nil {
		return err
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateCandidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	candidate, err := repo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "candidate")
		}
		return common.SendServerError(c, "Failed to get candidate")
	}

	candidate.LastName = req.LastName
	candidate.FirstName = req.FirstName
	candidate.Email = req.Email
	candidate.Phone = req.Phone
	if req.Status != "" {
		if !models.ValidCandidateStatus(req.Status) {
			return common.SendValidationError(c, "statut", "unknown candidate status")
		}
		candidate.Status = req.Status
	}

	if err := repo.Update(c.Request().Context(), candidate); err != nil {
		return common.SendServerError(c, "Failed to update candidate")
	}
	return c.JSON(http.StatusOK, candidate)
}

// DeleteCandidate handles deleting a candidate
func (h *CandidateHandlers) DeleteCandidate(c echo.Context) error {
	repo, _, err := h.routedRepo(c)
	if err != nil {
		return err
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := repo.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "Failed to delete candidate")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Candidate deleted"})
}

// ListCandidatesRequest represents query parameters for listing candidates
type ListCandidatesRequest struct {
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
	Search string `query:"q"`
}

// ListCandidates handles listing or searching candidates of the routed
// programme
func (h *CandidateHandlers) ListCandidates(c echo.Context) error {
	repo, programme, err := h.routedRepo(c)
	if err != nil {
		return err
	}

	var req ListCandidatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	var candidates []*models.Candidate
	if req.Search != "" {
		candidates, err = repo.Search(c.Request().Context(), programme.ID, req.Search, req.Limit)
	} else {
		candidates, err = repo.List(c.Request().Context(), programme.ID, req.Limit, req.Offset)
	}
	if err != nil {
		return common.SendServerError(c, "Failed to list candidates")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"candidats": candidates,
		"limit":     req.Limit,
		"offset":    req.Offset,
	})
}
