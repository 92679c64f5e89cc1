package repositories

import (
	"context"
	"testing"
	"time"

	"incubapp/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CandidateRepoTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	repo        CandidateRepository
	candidateID uuid.UUID
	ctx         context.Context
	now         time.Time
}

func (suite *CandidateRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewCandidateRepo(mock)
	suite.candidateID = uuid.New()
	suite.ctx = context.Background()
	suite.now = time.Now()
}

func (suite *CandidateRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestCandidateRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CandidateRepoTestSuite))
}

func (suite *CandidateRepoTestSuite) candidateRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "programme_id", "nom", "prenom", "email", "telephone", "statut", "created_at", "updated_at"})
}

func (suite *CandidateRepoTestSuite) TestCreate() {
	candidate := &models.Candidate{
		ID:          suite.candidateID,
		ProgrammeID: 1,
		LastName:    "Martin",
		FirstName:   "Claire",
		Email:       "claire.martin@example.org",
		Status:      models.CandidateStatusPreinscribed,
	}

	// Statements are unqualified: the schema is picked by the routing
	// session's search path, not by the SQL text.
	suite.mock.ExpectExec(`INSERT INTO candidats \(id, programme_id, nom, prenom, email, telephone, statut, created_at, updated_at\)`).
		WithArgs(candidate.ID, candidate.ProgrammeID, "Martin", "Claire", candidate.Email, candidate.Phone, candidate.Status).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, candidate)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *CandidateRepoTestSuite) TestGetByID() {
	suite.mock.ExpectQuery(`SELECT id, programme_id, nom, prenom, email, telephone, statut, created_at, updated_at`).
		WithArgs(suite.candidateID).
		WillReturnRows(suite.candidateRows().
			AddRow(suite.candidateID, int64(1), "Martin", "Claire", "claire.martin@example.org", nil, "actif", suite.now, suite.now))

	candidate, err := suite.repo.GetByID(suite.ctx, suite.candidateID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Martin", candidate.LastName)
	assert.Equal(suite.T(), models.CandidateStatusActive, candidate.Status)
	assert.Nil(suite.T(), candidate.Phone)
}

func (suite *CandidateRepoTestSuite) TestList() {
	suite.mock.ExpectQuery(`SELECT id, programme_id, nom, prenom, email, telephone, statut, created_at, updated_at`).
		WithArgs(int64(1), 20, 0).
		WillReturnRows(suite.candidateRows().
			AddRow(uuid.New(), int64(1), "Martin", "Claire", "claire@example.org", nil, "actif", suite.now, suite.now).
			AddRow(uuid.New(), int64(1), "Durand", "Paul", "paul@example.org", nil, "admis", suite.now, suite.now))

	candidates, err := suite.repo.List(suite.ctx, 1, 20, 0)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), candidates, 2)
}

func (suite *CandidateRepoTestSuite) TestSearch() {
	suite.mock.ExpectQuery(`SELECT id, programme_id, nom, prenom, email, telephone, statut, created_at, updated_at`).
		WithArgs(int64(1), "mart", 10).
		WillReturnRows(suite.candidateRows().
			AddRow(suite.candidateID, int64(1), "Martin", "Claire", "claire@example.org", nil, "actif", suite.now, suite.now))

	candidates, err := suite.repo.Search(suite.ctx, 1, "mart", 10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), candidates, 1)
	assert.Equal(suite.T(), "Martin", candidates[0].LastName)
}

func (suite *CandidateRepoTestSuite) TestDelete() {
	suite.mock.ExpectExec(`DELETE FROM candidats WHERE id = \$1`).
		WithArgs(suite.candidateID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.ctx, suite.candidateID)
	assert.NoError(suite.T(), err)
}
