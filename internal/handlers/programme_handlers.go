package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"incubapp/internal/common"
	"incubapp/internal/schema"
	"incubapp/internal/services"
)

// ProgrammeHandlers handles programme-related HTTP requests
type ProgrammeHandlers struct {
	programmeService services.ProgrammeService
}

func NewProgrammeHandlers(programmeService services.ProgrammeService) *ProgrammeHandlers {
	return &ProgrammeHandlers{programmeService: programmeService}
}

// CreateProgramme handles creating a new programme (admin only)
func (h *ProgrammeHandlers) CreateProgramme(c echo.Context) error {
	var req services.CreateProgrammeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Code == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Code and name are required")
	}

	programme, err := h.programmeService.Create(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, schema.ErrInvalidIdentifier) {
			return common.SendValidationError(c, "code", err.Error())
		}
		return common.SendServerError(c, "Failed to create programme")
	}
	return c.JSON(http.StatusCreated, programme)
}

// GetProgramme handles getting a programme by numeric ID
func (h *ProgrammeHandlers) GetProgramme(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendValidationError(c, "id", "must be a numeric programme ID")
	}

	programme, err := h.programmeService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "programme")
		}
		return common.SendServerError(c, "Failed to get programme")
	}
	return c.JSON(http.StatusOK, programme)
}

// GetProgrammeByCode handles getting a programme by its code
func (h *ProgrammeHandlers) GetProgrammeByCode(c echo.Context) error {
	code := c.Param("code")

	programme, err := h.programmeService.GetByCode(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "programme")
		}
		return common.SendServerError(c, "Failed to get programme")
	}
	return c.JSON(http.StatusOK, programme)
}

// UpdateProgramme handles updating a programme's name and active flag
func (h *ProgrammeHandlers) UpdateProgramme(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendValidationError(c, "id", "must be a numeric programme ID")
	}

	var req services.UpdateProgrammeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	req.ID = id
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}

	if err := h.programmeService.Update(c.Request().Context(), &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "programme")
		}
		if errors.Is(err, services.ErrCodeImmutable) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return common.SendServerError(c, "Failed to update programme")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Programme updated"})
}

// DeleteProgramme handles deleting a programme. The programme's schema must
// already be dropped.
func (h *ProgrammeHandlers) DeleteProgramme(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return common.SendValidationError(c, "id", "must be a numeric programme ID")
	}

	if err := h.programmeService.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "programme")
		}
		if errors.Is(err, services.ErrSchemaStillExists) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return common.SendServerError(c, "Failed to delete programme")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Programme deleted"})
}

// ListProgrammesRequest represents query parameters for listing programmes
type ListProgrammesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListProgrammes handles getting a list of programmes
func (h *ProgrammeHandlers) ListProgrammes(c echo.Context) error {
	var req ListProgrammesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	programmes, err := h.programmeService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list programmes")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"programmes": programmes,
		"limit":      req.Limit,
		"offset":     req.Offset,
	})
}
