package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"incubapp/internal/models"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProgrammeRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo ProgrammeRepository
	ctx  context.Context
	now  time.Time
}

func (suite *ProgrammeRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewProgrammeRepo(mock)
	suite.ctx = context.Background()
	suite.now = time.Now()
}

func (suite *ProgrammeRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestProgrammeRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProgrammeRepoTestSuite))
}

func (suite *ProgrammeRepoTestSuite) programmeRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "code", "name", "active", "created_at", "updated_at"})
}

func (suite *ProgrammeRepoTestSuite) TestCreate_AssignsID() {
	programme := &models.Programme{Code: "ACD", Name: "Accompagnement Création", Active: true}

	suite.mock.ExpectQuery(`INSERT INTO programmes \(code, name, active, created_at, updated_at\)`).
		WithArgs("ACD", "Accompagnement Création", true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), suite.now, suite.now))

	err := suite.repo.Create(suite.ctx, programme)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), programme.ID)
}

func (suite *ProgrammeRepoTestSuite) TestGetByCode() {
	suite.mock.ExpectQuery(`SELECT id, code, name, active, created_at, updated_at`).
		WithArgs("ACD").
		WillReturnRows(suite.programmeRows().AddRow(int64(1), "ACD", "Accompagnement Création", true, suite.now, suite.now))

	programme, err := suite.repo.GetByCode(suite.ctx, "ACD")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "ACD", programme.Code)
	assert.True(suite.T(), programme.Active)
}

func (suite *ProgrammeRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`SELECT id, code, name, active, created_at, updated_at`).
		WithArgs(int64(42)).
		WillReturnError(errors.New("no rows in result set"))

	_, err := suite.repo.GetByID(suite.ctx, 42)
	assert.Error(suite.T(), err)
}

func (suite *ProgrammeRepoTestSuite) TestUpdate_NeverTouchesCode() {
	programme := &models.Programme{ID: 1, Code: "ACD", Name: "Renamed", Active: false}

	suite.mock.ExpectExec(`UPDATE programmes\s+SET name = \$1, active = \$2, updated_at = NOW\(\)\s+WHERE id = \$3`).
		WithArgs("Renamed", false, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Update(suite.ctx, programme)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ProgrammeRepoTestSuite) TestList() {
	suite.mock.ExpectQuery(`SELECT id, code, name, active, created_at, updated_at`).
		WithArgs(20, 0).
		WillReturnRows(suite.programmeRows().
			AddRow(int64(2), "INCUB", "Incubation", true, suite.now, suite.now).
			AddRow(int64(1), "ACD", "Accompagnement Création", true, suite.now, suite.now))

	programmes, err := suite.repo.List(suite.ctx, 20, 0)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), programmes, 2)
	assert.Equal(suite.T(), "INCUB", programmes[0].Code)
}
