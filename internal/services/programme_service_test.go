package services

import (
	"context"
	"errors"
	"testing"

	"incubapp/internal/models"
	"incubapp/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockProgrammeRepository struct {
	mock.Mock
}

func (m *MockProgrammeRepository) Create(ctx context.Context, programme *models.Programme) error {
	args := m.Called(ctx, programme)
	return args.Error(0)
}

func (m *MockProgrammeRepository) GetByID(ctx context.Context, id int64) (*models.Programme, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Programme), args.Error(1)
}

func (m *MockProgrammeRepository) GetByCode(ctx context.Context, code string) (*models.Programme, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Programme), args.Error(1)
}

func (m *MockProgrammeRepository) Update(ctx context.Context, programme *models.Programme) error {
	args := m.Called(ctx, programme)
	return args.Error(0)
}

func (m *MockProgrammeRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProgrammeRepository) List(ctx context.Context, limit, offset int) ([]*models.Programme, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Programme), args.Error(1)
}

type MockSchemaChecker struct {
	mock.Mock
}

func (m *MockSchemaChecker) SchemaExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type ProgrammeServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockProgrammeRepository
	mockSchemas *MockSchemaChecker
	service     ProgrammeService
	ctx         context.Context
}

func (suite *ProgrammeServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockProgrammeRepository)
	suite.mockSchemas = new(MockSchemaChecker)
	suite.service = NewProgrammeService(suite.mockRepo, suite.mockSchemas, nil)
	suite.ctx = context.Background()
}

func TestProgrammeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProgrammeServiceTestSuite))
}

func (suite *ProgrammeServiceTestSuite) TestCreate_Success() {
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Programme")).Return(nil)

	programme, err := suite.service.Create(suite.ctx, &CreateProgrammeRequest{Code: "ACD", Name: "Accompagnement Création"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ACD", programme.Code)
	assert.True(suite.T(), programme.Active)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ProgrammeServiceTestSuite) TestCreate_RejectsUnroutableCode() {
	_, err := suite.service.Create(suite.ctx, &CreateProgrammeRequest{Code: "bad code", Name: "X"})
	assert.True(suite.T(), errors.Is(err, schema.ErrInvalidIdentifier))
	suite.mockRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *ProgrammeServiceTestSuite) TestCreate_RejectsReservedCode() {
	_, err := suite.service.Create(suite.ctx, &CreateProgrammeRequest{Code: "public", Name: "X"})
	assert.True(suite.T(), errors.Is(err, schema.ErrInvalidIdentifier))
}

func (suite *ProgrammeServiceTestSuite) TestUpdate_BlocksCodeChangeWhenSchemaExists() {
	existing := &models.Programme{ID: 1, Code: "ACD", Name: "Old"}
	suite.mockRepo.On("GetByID", suite.ctx, int64(1)).Return(existing, nil)
	suite.mockSchemas.On("SchemaExists", suite.ctx, "ACD").Return(true, nil)

	err := suite.service.Update(suite.ctx, &UpdateProgrammeRequest{ID: 1, Code: "NEW", Name: "New"})
	assert.True(suite.T(), errors.Is(err, ErrCodeImmutable))
	suite.mockRepo.AssertNotCalled(suite.T(), "Update")
}

func (suite *ProgrammeServiceTestSuite) TestUpdate_Success() {
	existing := &models.Programme{ID: 1, Code: "ACD", Name: "Old", Active: true}
	suite.mockRepo.On("GetByID", suite.ctx, int64(1)).Return(existing, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Programme")).Return(nil)

	err := suite.service.Update(suite.ctx, &UpdateProgrammeRequest{ID: 1, Name: "New", Active: false})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New", existing.Name)
	assert.False(suite.T(), existing.Active)
}

func (suite *ProgrammeServiceTestSuite) TestDelete_RequiresDroppedSchema() {
	existing := &models.Programme{ID: 1, Code: "ACD"}
	suite.mockRepo.On("GetByID", suite.ctx, int64(1)).Return(existing, nil)
	suite.mockSchemas.On("SchemaExists", suite.ctx, "ACD").Return(true, nil)

	err := suite.service.Delete(suite.ctx, 1)
	assert.True(suite.T(), errors.Is(err, ErrSchemaStillExists))
	suite.mockRepo.AssertNotCalled(suite.T(), "Delete")
}

func (suite *ProgrammeServiceTestSuite) TestDelete_Success() {
	existing := &models.Programme{ID: 1, Code: "ACD"}
	suite.mockRepo.On("GetByID", suite.ctx, int64(1)).Return(existing, nil)
	suite.mockSchemas.On("SchemaExists", suite.ctx, "ACD").Return(false, nil)
	suite.mockRepo.On("Delete", suite.ctx, int64(1)).Return(nil)

	err := suite.service.Delete(suite.ctx, 1)
	assert.NoError(suite.T(), err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ProgrammeServiceTestSuite) TestExists() {
	suite.mockRepo.On("GetByCode", suite.ctx, "ACD").Return(&models.Programme{ID: 1, Code: "ACD", Active: true}, nil)
	suite.mockRepo.On("GetByCode", suite.ctx, "GONE").Return(nil, errors.New("no rows in result set"))

	assert.True(suite.T(), suite.service.Exists(suite.ctx, "ACD"))
	assert.False(suite.T(), suite.service.Exists(suite.ctx, "GONE"))
}

func (suite *ProgrammeServiceTestSuite) TestExists_InactiveProgramme() {
	suite.mockRepo.On("GetByCode", suite.ctx, "OLD").Return(&models.Programme{ID: 2, Code: "OLD", Active: false}, nil)

	assert.False(suite.T(), suite.service.Exists(suite.ctx, "OLD"))
}
