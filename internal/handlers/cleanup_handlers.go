package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"incubapp/internal/common"
	"incubapp/internal/models"
	"incubapp/internal/services"
)

// CleanupHandlers handles cleanup rule administration
type CleanupHandlers struct {
	cleanupService services.CleanupService
}

func NewCleanupHandlers(cleanupService services.CleanupService) *CleanupHandlers {
	return &CleanupHandlers{cleanupService: cleanupService}
}

// CleanupRuleRequest represents the rule create/update payload
type CleanupRuleRequest struct {
	TableName string `json:"table_name" validate:"required"`
	Condition string `json:"condition" validate:"required"`
	Active    bool   `json:"active"`
}

// CreateRule handles creating a cleanup rule
func (h *CleanupHandlers) CreateRule(c echo.Context) error {
	var req CleanupRuleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	rule := &models.CleanupRule{
		ID:        uuid.New(),
		TableName: req.TableName,
		Condition: req.Condition,
		Active:    req.Active,
	}
	if err := h.cleanupService.CreateRule(c.Request().Context(), rule); err != nil {
		if errors.Is(err, services.ErrUnknownCleanupTable) {
			return common.SendValidationError(c, "table_name", err.Error())
		}
		return common.SendServerError(c, "Failed to create cleanup rule")
	}
	return c.JSON(http.StatusCreated, rule)
}

// UpdateRule handles updating a cleanup rule
func (h *CleanupHandlers) UpdateRule(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req CleanupRuleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	rule := &models.CleanupRule{
		ID:        id,
		TableName: req.TableName,
		Condition: req.Condition,
		Active:    req.Active,
	}
	if err := h.cleanupService.UpdateRule(c.Request().Context(), rule); err != nil {
		if errors.Is(err, services.ErrUnknownCleanupTable) {
			return common.SendValidationError(c, "table_name", err.Error())
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "cleanup rule")
		}
		return common.SendServerError(c, "Failed to update cleanup rule")
	}
	return c.JSON(http.StatusOK, rule)
}

// DeleteRule handles deleting a cleanup rule
func (h *CleanupHandlers) DeleteRule(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.cleanupService.DeleteRule(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "Failed to delete cleanup rule")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Cleanup rule deleted"})
}

// ListRules handles listing cleanup rules
func (h *CleanupHandlers) ListRules(c echo.Context) error {
	onlyActive := c.QueryParam("active") == "true"

	rules, err := h.cleanupService.ListRules(c.Request().Context(), onlyActive)
	if err != nil {
		return common.SendServerError(c, "Failed to list cleanup rules")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rules": rules})
}

// RunRule handles executing one rule immediately
func (h *CleanupHandlers) RunRule(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	entry, runErr := h.cleanupService.RunRule(c.Request().Context(), id)
	if runErr != nil {
		if errors.Is(runErr, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "cleanup rule")
		}
		// The log entry records the failure; surface both.
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"message": "Cleanup rule failed",
			"error":   runErr.Error(),
			"log":     entry,
		})
	}
	return c.JSON(http.StatusOK, entry)
}

// RunActiveRules handles executing every active rule immediately
func (h *CleanupHandlers) RunActiveRules(c echo.Context) error {
	logs, err := h.cleanupService.RunActiveRules(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to run cleanup rules")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"logs": logs})
}
