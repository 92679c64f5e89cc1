package handlers

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"incubapp/internal/common"
	"incubapp/internal/services"
)

// ArchiveHandlers handles archive-related HTTP requests
type ArchiveHandlers struct {
	archiveService services.ArchiveService
}

func NewArchiveHandlers(archiveService services.ArchiveService) *ArchiveHandlers {
	return &ArchiveHandlers{archiveService: archiveService}
}

// CreateArchiveRequest represents the archive creation payload
type CreateArchiveRequest struct {
	Programme string `json:"programme" validate:"required"`
}

// CreateArchive handles creating an archive of a programme schema
func (h *ArchiveHandlers) CreateArchive(c echo.Context) error {
	var req CreateArchiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Programme == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Programme is required")
	}

	operator := ""
	if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
		operator = userID.String()
	}

	archive, err := h.archiveService.CreateArchive(c.Request().Context(), req.Programme, operator)
	if err != nil {
		return common.SendServerError(c, "Failed to create archive")
	}
	return c.JSON(http.StatusCreated, archive)
}

// GetArchive handles getting an archive record by ID
func (h *ArchiveHandlers) GetArchive(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	archive, err := h.archiveService.GetArchive(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "archive")
		}
		return common.SendServerError(c, "Failed to get archive")
	}
	return c.JSON(http.StatusOK, archive)
}

// ListArchivesRequest represents query parameters for listing archives
type ListArchivesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListArchives handles listing archive records
func (h *ArchiveHandlers) ListArchives(c echo.Context) error {
	var req ListArchivesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	archives, err := h.archiveService.ListArchives(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list archives")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"archives": archives,
		"limit":    req.Limit,
		"offset":   req.Offset,
	})
}

// DeleteArchive handles deleting an archive and its stored artifact
func (h *ArchiveHandlers) DeleteArchive(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.archiveService.DeleteArchive(c.Request().Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "archive")
		}
		return common.SendServerError(c, "Failed to delete archive")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Archive deleted"})
}
