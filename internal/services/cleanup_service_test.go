package services

import (
	"context"
	"errors"
	"testing"

	"incubapp/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockCleanupRepository struct {
	mock.Mock
}

func (m *MockCleanupRepository) CreateRule(ctx context.Context, rule *models.CleanupRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockCleanupRepository) GetRule(ctx context.Context, id uuid.UUID) (*models.CleanupRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CleanupRule), args.Error(1)
}

func (m *MockCleanupRepository) UpdateRule(ctx context.Context, rule *models.CleanupRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockCleanupRepository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCleanupRepository) ListRules(ctx context.Context, onlyActive bool) ([]*models.CleanupRule, error) {
	args := m.Called(ctx, onlyActive)
	return args.Get(0).([]*models.CleanupRule), args.Error(1)
}

func (m *MockCleanupRepository) CreateLog(ctx context.Context, entry *models.CleanupLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCleanupRepository) ListLogs(ctx context.Context, ruleID uuid.UUID, limit int) ([]*models.CleanupLog, error) {
	args := m.Called(ctx, ruleID, limit)
	return args.Get(0).([]*models.CleanupLog), args.Error(1)
}

type CleanupServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCleanupRepository
	mockDB   pgxmock.PgxPoolIface
	service  CleanupService
	ctx      context.Context
}

func (suite *CleanupServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCleanupRepository)
	mockDB, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mockDB = mockDB
	suite.service = NewCleanupService(suite.mockRepo, mockDB)
	suite.ctx = context.Background()
}

func (suite *CleanupServiceTestSuite) TearDownTest() {
	suite.mockDB.Close()
}

func TestCleanupServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CleanupServiceTestSuite))
}

func (suite *CleanupServiceTestSuite) TestCreateRule_RejectsUnknownTable() {
	rule := &models.CleanupRule{TableName: "users", Condition: "created_at < NOW()"}

	err := suite.service.CreateRule(suite.ctx, rule)
	assert.True(suite.T(), errors.Is(err, ErrUnknownCleanupTable))
	suite.mockRepo.AssertNotCalled(suite.T(), "CreateRule")
}

func (suite *CleanupServiceTestSuite) TestCreateRule_RejectsUnsafeTableName() {
	rule := &models.CleanupRule{TableName: "candidats; DROP TABLE programmes", Condition: "1=1"}

	err := suite.service.CreateRule(suite.ctx, rule)
	assert.True(suite.T(), errors.Is(err, ErrUnknownCleanupTable))
}

func (suite *CleanupServiceTestSuite) TestCreateRule_AcceptsKnownTables() {
	suite.mockRepo.On("CreateRule", suite.ctx, mock.AnythingOfType("*models.CleanupRule")).Return(nil)

	for _, table := range []string{"candidats", "archives", "cleanup_logs"} {
		rule := &models.CleanupRule{TableName: table, Condition: "created_at < NOW() - INTERVAL '1 year'"}
		assert.NoError(suite.T(), suite.service.CreateRule(suite.ctx, rule), "table %q", table)
		assert.NotEqual(suite.T(), uuid.Nil, rule.ID)
	}
}

func (suite *CleanupServiceTestSuite) TestRunRule_DeletesAndLogs() {
	ruleID := uuid.New()
	rule := &models.CleanupRule{
		ID:        ruleID,
		TableName: "cleanup_logs",
		Condition: "executed_at < NOW() - INTERVAL '30 days'",
		Active:    true,
	}
	suite.mockRepo.On("GetRule", suite.ctx, ruleID).Return(rule, nil)
	suite.mockDB.ExpectExec(`DELETE FROM "cleanup_logs" WHERE executed_at < NOW\(\) - INTERVAL '30 days'`).
		WillReturnResult(pgxmock.NewResult("DELETE", 42))
	suite.mockRepo.On("CreateLog", suite.ctx, mock.AnythingOfType("*models.CleanupLog")).Return(nil)

	entry, err := suite.service.RunRule(suite.ctx, ruleID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), entry.Success)
	assert.Equal(suite.T(), int64(42), entry.RowsDeleted)
	assert.NoError(suite.T(), suite.mockDB.ExpectationsWereMet())
}

func (suite *CleanupServiceTestSuite) TestRunRule_RecordsFailure() {
	ruleID := uuid.New()
	rule := &models.CleanupRule{ID: ruleID, TableName: "candidats", Condition: "bad syntax here"}
	suite.mockRepo.On("GetRule", suite.ctx, ruleID).Return(rule, nil)
	suite.mockDB.ExpectExec(`DELETE FROM "candidats" WHERE bad syntax here`).
		WillReturnError(errors.New("syntax error"))
	suite.mockRepo.On("CreateLog", suite.ctx, mock.AnythingOfType("*models.CleanupLog")).Return(nil)

	entry, err := suite.service.RunRule(suite.ctx, ruleID)
	require.Error(suite.T(), err)
	assert.False(suite.T(), entry.Success)
	require.NotNil(suite.T(), entry.Error)
	assert.Contains(suite.T(), *entry.Error, "syntax error")
}

func (suite *CleanupServiceTestSuite) TestRunActiveRules_OneFailureDoesNotStopOthers() {
	failing := &models.CleanupRule{ID: uuid.New(), TableName: "candidats", Condition: "broken", Active: true}
	working := &models.CleanupRule{ID: uuid.New(), TableName: "archives", Condition: "status = 'failed'", Active: true}

	suite.mockRepo.On("ListRules", suite.ctx, true).Return([]*models.CleanupRule{failing, working}, nil)
	suite.mockDB.ExpectExec(`DELETE FROM "candidats" WHERE broken`).
		WillReturnError(errors.New("syntax error"))
	suite.mockDB.ExpectExec(`DELETE FROM "archives" WHERE status = 'failed'`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	suite.mockRepo.On("CreateLog", suite.ctx, mock.AnythingOfType("*models.CleanupLog")).Return(nil)

	logs, err := suite.service.RunActiveRules(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), logs, 2)
	assert.False(suite.T(), logs[0].Success)
	assert.True(suite.T(), logs[1].Success)
	assert.Equal(suite.T(), int64(3), logs[1].RowsDeleted)
	assert.NoError(suite.T(), suite.mockDB.ExpectationsWereMet())
}
