package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"incubapp/internal/caching"
	"incubapp/internal/common"
	"incubapp/internal/schema"
)

const statsCacheTTL = 5 * time.Minute

// SchemaManager is the administrative surface of the schema lifecycle
// service.
type SchemaManager interface {
	CreateProgramSchema(ctx context.Context, code string) error
	MigrateExistingData(ctx context.Context, code string) (*schema.MigrationReport, error)
	BackupSchema(ctx context.Context, code, dir, operator string) (*schema.BackupResult, error)
	DropProgramSchema(ctx context.Context, code string, backupFirst bool, backupDir, operator string) error
	GetSchemaStats(ctx context.Context, code string) (map[string]int64, error)
	GetSchemaTables() []string
}

// SchemaAdminHandlers exposes programme schema lifecycle operations to
// operators. Every response carries an explicit status and human-readable
// message; failures are never swallowed.
type SchemaAdminHandlers struct {
	schemas   SchemaManager
	cache     caching.CacheService
	backupDir string
}

func NewSchemaAdminHandlers(schemas SchemaManager, cache caching.CacheService, backupDir string) *SchemaAdminHandlers {
	return &SchemaAdminHandlers{schemas: schemas, cache: cache, backupDir: backupDir}
}

type schemaOpResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Programme string `json:"programme"`
}

// operatorFromContext identifies the authenticated operator for backup
// metadata. Empty when the request carries no user identity.
func operatorFromContext(c echo.Context) string {
	if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
		return userID.String()
	}
	return ""
}

func schemaErrorStatus(err error) int {
	if errors.Is(err, schema.ErrInvalidIdentifier) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// CreateSchema handles POST /admin/schemas/:code
func (h *SchemaAdminHandlers) CreateSchema(c echo.Context) error {
	code := c.Param("code")
	if err := h.schemas.CreateProgramSchema(c.Request().Context(), code); err != nil {
		log.Error().Err(err).Str("programme", code).Msg("Schema creation failed")
		return c.JSON(schemaErrorStatus(err), schemaOpResponse{
			Status: "error", Message: err.Error(), Programme: code,
		})
	}
	return c.JSON(http.StatusCreated, schemaOpResponse{
		Status: "ok", Message: "Schema created", Programme: code,
	})
}

// MigrateData handles POST /admin/schemas/:code/migrate
func (h *SchemaAdminHandlers) MigrateData(c echo.Context) error {
	code := c.Param("code")
	report, err := h.schemas.MigrateExistingData(c.Request().Context(), code)
	if err != nil {
		log.Error().Err(err).Str("programme", code).Msg("Data migration failed")
		return c.JSON(schemaErrorStatus(err), map[string]interface{}{
			"status":    "error",
			"message":   err.Error(),
			"programme": code,
			// Partial state is recoverable: source rows of failed tables are
			// untouched and migration can simply be re-run.
			"partial_report": report,
		})
	}
	h.invalidateStats(c, code)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": "Data migrated",
		"report":  report,
	})
}

// BackupSchema handles POST /admin/schemas/:code/backup
func (h *SchemaAdminHandlers) BackupSchema(c echo.Context) error {
	code := c.Param("code")
	dir := c.QueryParam("path")
	if dir == "" {
		dir = filepath.Join(h.backupDir, code+"-"+time.Now().UTC().Format("20060102T150405"))
	}
	result, err := h.schemas.BackupSchema(c.Request().Context(), code, dir, operatorFromContext(c))
	if err != nil {
		log.Error().Err(err).Str("programme", code).Msg("Schema backup failed")
		return c.JSON(schemaErrorStatus(err), schemaOpResponse{
			Status: "error", Message: err.Error(), Programme: code,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"message": "Backup written",
		"dir":     result.Dir,
		"files":   result.Files,
	})
}

// DropSchema handles DELETE /admin/schemas/:code. Backup-first is the
// default; skipping it requires an explicit backup=false.
func (h *SchemaAdminHandlers) DropSchema(c echo.Context) error {
	code := c.Param("code")
	backupFirst := c.QueryParam("backup") != "false"
	dir := filepath.Join(h.backupDir, code+"-predrop-"+time.Now().UTC().Format("20060102T150405"))

	if err := h.schemas.DropProgramSchema(c.Request().Context(), code, backupFirst, dir, operatorFromContext(c)); err != nil {
		log.Error().Err(err).Str("programme", code).Bool("backup_first", backupFirst).Msg("Schema drop failed")
		return c.JSON(schemaErrorStatus(err), schemaOpResponse{
			Status: "error", Message: err.Error(), Programme: code,
		})
	}
	h.invalidateStats(c, code)
	return c.JSON(http.StatusOK, schemaOpResponse{
		Status: "ok", Message: "Schema dropped", Programme: code,
	})
}

// GetStats handles GET /admin/schemas/:code/stats
func (h *SchemaAdminHandlers) GetStats(c echo.Context) error {
	code := c.Param("code")
	ctx := c.Request().Context()

	if h.cache != nil {
		if stats, err := h.cache.GetSchemaStats(ctx, code); err == nil {
			return c.JSON(http.StatusOK, map[string]interface{}{"programme": code, "stats": stats, "cached": true})
		}
	}

	stats, err := h.schemas.GetSchemaStats(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("programme", code).Msg("Schema stats failed")
		return c.JSON(schemaErrorStatus(err), schemaOpResponse{
			Status: "error", Message: err.Error(), Programme: code,
		})
	}

	if h.cache != nil {
		if err := h.cache.SetSchemaStats(ctx, code, stats, statsCacheTTL); err != nil {
			log.Warn().Err(err).Str("programme", code).Msg("Failed to cache schema stats")
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"programme": code, "stats": stats})
}

// GetTables handles GET /admin/schemas/tables
func (h *SchemaAdminHandlers) GetTables(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tables": h.schemas.GetSchemaTables(),
	})
}

func (h *SchemaAdminHandlers) invalidateStats(c echo.Context, code string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteSchemaStats(c.Request().Context(), code); err != nil {
		log.Warn().Err(err).Str("programme", code).Msg("Failed to invalidate stats cache")
	}
}
