package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"incubapp/internal/models"
	"incubapp/internal/schema"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Create(ctx context.Context, archive *models.Archive) error {
	args := m.Called(ctx, archive)
	return args.Error(0)
}

func (m *MockArchiveRepository) Finalize(ctx context.Context, id uuid.UUID, path string, size int64) error {
	args := m.Called(ctx, id, path, size)
	return args.Error(0)
}

func (m *MockArchiveRepository) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

func (m *MockArchiveRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Archive, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Archive), args.Error(1)
}

func (m *MockArchiveRepository) List(ctx context.Context, limit, offset int) ([]*models.Archive, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Archive), args.Error(1)
}

func (m *MockArchiveRepository) ListExpired(ctx context.Context, now time.Time) ([]*models.Archive, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*models.Archive), args.Error(1)
}

func (m *MockArchiveRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSchemaBackuper struct {
	mock.Mock
}

func (m *MockSchemaBackuper) BackupSchema(ctx context.Context, code, dir, operator string) (*schema.BackupResult, error) {
	args := m.Called(ctx, code, dir, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.BackupResult), args.Error(1)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func (m *MockStorageService) UploadDirectory(ctx context.Context, bucketName, prefix, dir string) (int64, error) {
	args := m.Called(ctx, bucketName, prefix, dir)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorageService) RemovePrefix(ctx context.Context, bucketName, prefix string) error {
	args := m.Called(ctx, bucketName, prefix)
	return args.Error(0)
}

type ArchiveServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockArchiveRepository
	mockSchemas *MockSchemaBackuper
	mockStorage *MockStorageService
	service     ArchiveService
	ctx         context.Context
}

func (suite *ArchiveServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockArchiveRepository)
	suite.mockSchemas = new(MockSchemaBackuper)
	suite.mockStorage = new(MockStorageService)
	suite.service = NewArchiveService(suite.mockRepo, suite.mockSchemas, suite.mockStorage,
		"archives", suite.T().TempDir(), 90*24*time.Hour)
	suite.ctx = context.Background()
}

func TestArchiveServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArchiveServiceTestSuite))
}

func (suite *ArchiveServiceTestSuite) TestCreateArchive_Success() {
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Archive")).Return(nil)
	suite.mockSchemas.On("BackupSchema", suite.ctx, "acd", mock.AnythingOfType("string"), "operator-1").
		Return(&schema.BackupResult{Dir: "/tmp/x", Files: []string{"candidats.csv"}}, nil)
	suite.mockStorage.On("UploadDirectory", suite.ctx, "archives", mock.AnythingOfType("string"), "/tmp/x").
		Return(int64(2048), nil)
	suite.mockRepo.On("Finalize", suite.ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("string"), int64(2048)).Return(nil)

	archive, err := suite.service.CreateArchive(suite.ctx, "acd", "operator-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ArchiveStatusDone, archive.Status)
	assert.Equal(suite.T(), int64(2048), archive.Size)
	require.NotNil(suite.T(), archive.ExpiresAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ArchiveServiceTestSuite) TestCreateArchive_BackupFailureIsRecorded() {
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Archive")).Return(nil)
	suite.mockSchemas.On("BackupSchema", suite.ctx, "acd", mock.AnythingOfType("string"), "operator-1").
		Return(nil, errors.New("schema not found"))
	suite.mockRepo.On("Fail", suite.ctx, mock.AnythingOfType("uuid.UUID"), "schema not found").Return(nil)

	_, err := suite.service.CreateArchive(suite.ctx, "acd", "operator-1")
	require.Error(suite.T(), err)
	suite.mockRepo.AssertCalled(suite.T(), "Fail", suite.ctx, mock.AnythingOfType("uuid.UUID"), "schema not found")
	suite.mockStorage.AssertNotCalled(suite.T(), "UploadDirectory")
}

func (suite *ArchiveServiceTestSuite) TestCreateArchive_UploadFailureIsRecorded() {
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Archive")).Return(nil)
	suite.mockSchemas.On("BackupSchema", suite.ctx, "acd", mock.AnythingOfType("string"), "operator-1").
		Return(&schema.BackupResult{Dir: "/tmp/x"}, nil)
	suite.mockStorage.On("UploadDirectory", suite.ctx, "archives", mock.AnythingOfType("string"), "/tmp/x").
		Return(int64(0), errors.New("bucket unreachable"))
	suite.mockRepo.On("Fail", suite.ctx, mock.AnythingOfType("uuid.UUID"), "bucket unreachable").Return(nil)

	_, err := suite.service.CreateArchive(suite.ctx, "acd", "operator-1")
	require.Error(suite.T(), err)
	suite.mockRepo.AssertNotCalled(suite.T(), "Finalize")
}

func (suite *ArchiveServiceTestSuite) TestDeleteArchive_RemovesArtifactFirst() {
	id := uuid.New()
	path := "acd/" + id.String()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Archive{ID: id, Path: &path}, nil)
	suite.mockStorage.On("RemovePrefix", suite.ctx, "archives", path).Return(nil)
	suite.mockRepo.On("Delete", suite.ctx, id).Return(nil)

	err := suite.service.DeleteArchive(suite.ctx, id)
	assert.NoError(suite.T(), err)
	suite.mockStorage.AssertExpectations(suite.T())
}

func (suite *ArchiveServiceTestSuite) TestDeleteArchive_KeepsRecordOnStorageFailure() {
	id := uuid.New()
	path := "acd/" + id.String()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(&models.Archive{ID: id, Path: &path}, nil)
	suite.mockStorage.On("RemovePrefix", suite.ctx, "archives", path).Return(errors.New("timeout"))

	err := suite.service.DeleteArchive(suite.ctx, id)
	require.Error(suite.T(), err)
	suite.mockRepo.AssertNotCalled(suite.T(), "Delete")
}

func (suite *ArchiveServiceTestSuite) TestExpireArchives() {
	expired := []*models.Archive{
		{ID: uuid.New()},
		{ID: uuid.New()},
	}
	suite.mockRepo.On("ListExpired", suite.ctx, mock.AnythingOfType("time.Time")).Return(expired, nil)
	for _, archive := range expired {
		suite.mockRepo.On("GetByID", suite.ctx, archive.ID).Return(archive, nil)
		suite.mockRepo.On("Delete", suite.ctx, archive.ID).Return(nil)
	}

	deleted, err := suite.service.ExpireArchives(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, deleted)
}
