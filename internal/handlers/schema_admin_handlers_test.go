package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"incubapp/internal/schema"
)

type MockSchemaManager struct {
	mock.Mock
}

func (m *MockSchemaManager) CreateProgramSchema(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockSchemaManager) MigrateExistingData(ctx context.Context, code string) (*schema.MigrationReport, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.MigrationReport), args.Error(1)
}

func (m *MockSchemaManager) BackupSchema(ctx context.Context, code, dir, operator string) (*schema.BackupResult, error) {
	args := m.Called(ctx, code, dir, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.BackupResult), args.Error(1)
}

func (m *MockSchemaManager) DropProgramSchema(ctx context.Context, code string, backupFirst bool, backupDir, operator string) error {
	args := m.Called(ctx, code, backupFirst, backupDir, operator)
	return args.Error(0)
}

func (m *MockSchemaManager) GetSchemaStats(ctx context.Context, code string) (map[string]int64, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockSchemaManager) GetSchemaTables() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func adminContext(method, target, code string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("code")
	c.SetParamValues(code)
	return c, rec
}

func TestCreateSchema_Created(t *testing.T) {
	manager := new(MockSchemaManager)
	manager.On("CreateProgramSchema", mock.Anything, "ACD").Return(nil)
	h := NewSchemaAdminHandlers(manager, nil, t.TempDir())

	c, rec := adminContext(http.MethodPost, "/v1/admin/schemas/ACD", "ACD")
	require.NoError(t, h.CreateSchema(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp schemaOpResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ACD", resp.Programme)
}

func TestCreateSchema_InvalidCodeIs400(t *testing.T) {
	manager := new(MockSchemaManager)
	manager.On("CreateProgramSchema", mock.Anything, "bad code").
		Return(schema.ErrInvalidIdentifier)
	h := NewSchemaAdminHandlers(manager, nil, t.TempDir())

	c, rec := adminContext(http.MethodPost, "/v1/admin/schemas/bad%20code", "bad code")
	require.NoError(t, h.CreateSchema(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMigrateData_ReturnsReport(t *testing.T) {
	manager := new(MockSchemaManager)
	manager.On("MigrateExistingData", mock.Anything, "acd").Return(&schema.MigrationReport{
		Programme: "acd",
		Schema:    "acd",
		Tables:    []schema.TableMigration{{Table: "candidats", Copied: 10, Deleted: 10}},
	}, nil)
	h := NewSchemaAdminHandlers(manager, nil, t.TempDir())

	c, rec := adminContext(http.MethodPost, "/v1/admin/schemas/acd/migrate", "acd")
	require.NoError(t, h.MigrateData(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"copied":10`)
}

func TestMigrateData_PartialFailureKeepsReport(t *testing.T) {
	manager := new(MockSchemaManager)
	report := &schema.MigrationReport{Programme: "acd", Schema: "acd"}
	manager.On("MigrateExistingData", mock.Anything, "acd").
		Return(report, &schema.OpError{Programme: "acd", Op: "copy_candidats", Err: assert.AnError})
	h := NewSchemaAdminHandlers(manager, nil, t.TempDir())

	c, rec := adminContext(http.MethodPost, "/v1/admin/schemas/acd/migrate", "acd")
	require.NoError(t, h.MigrateData(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "partial_report")
}

func TestDropSchema_BackupFirstByDefault(t *testing.T) {
	manager := new(MockSchemaManager)
	manager.On("DropProgramSchema", mock.Anything, "acd", true, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)
	h := NewSchemaAdminHandlers(manager, nil, t.TempDir())

	c, rec := adminContext(http.MethodDelete, "/v1/admin/schemas/acd", "acd")
	require.NoError(t, h.DropSchema(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	manager.AssertExpectations(t)
}

func TestDropSchema_ExplicitOptOut(t *testing.T) {
	manager := new(MockSchemaManager)
	manager.On("DropProgramSchema", mock.Anything, "acd", false, mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)
	h := NewSchemaAdminHandlers(manager, nil, t.TempDir())

	c, rec := adminContext(http.MethodDelete, "/v1/admin/schemas/acd?backup=false", "acd")
	require.NoError(t, h.DropSchema(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	manager.AssertExpectations(t)
}

func TestGetStats_ReturnsTableCounts(t *testing.T) {
	manager := new(MockSchemaManager)
	manager.On("GetSchemaStats", mock.Anything, "acd").Return(map[string]int64{
		"candidats":    10,
		"inscriptions": 5,
	}, nil)
	h := NewSchemaAdminHandlers(manager, nil, t.TempDir())

	c, rec := adminContext(http.MethodGet, "/v1/admin/schemas/acd/stats", "acd")
	require.NoError(t, h.GetStats(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Programme string           `json:"programme"`
		Stats     map[string]int64 `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.Stats["candidats"])
	assert.Equal(t, int64(5), resp.Stats["inscriptions"])
}

func TestGetTables_ListsFixedSet(t *testing.T) {
	manager := new(MockSchemaManager)
	manager.On("GetSchemaTables").Return([]string{"candidats", "preinscriptions"})
	h := NewSchemaAdminHandlers(manager, nil, t.TempDir())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/schemas/tables", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.GetTables(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "candidats")
}
