package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"incubapp/internal/common"
	"incubapp/internal/middleware"
	"incubapp/internal/models"
	"incubapp/internal/repositories"
	"incubapp/internal/services"
)

// DossierHandlers covers the candidate dossier sub-resources: applications,
// enrollments, enterprises, documents, eligibility scores and jury decisions.
// All of them run inside the programme schema selected by the routing
// middleware, same as the candidate routes.
type DossierHandlers struct {
	programmes services.ProgrammeService
}

func NewDossierHandlers(programmes services.ProgrammeService) *DossierHandlers {
	return &DossierHandlers{programmes: programmes}
}

func (h *DossierHandlers) routed(c echo.Context) (repositories.Database, *models.Programme, error) {
	sess, ok := middleware.RoutingSessionFromContext(c)
	if !ok {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "A valid programme code is required")
	}
	code, _ := common.GetProgrammeCodeFromContext(c.Request().Context())
	programme, err := h.programmes.GetByCode(c.Request().Context(), code)
	if err != nil {
		// The error must be non-nil so callers stop here instead of
		// proceeding with a nil programme.
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, "Programme not found")
	}
	return sess, programme, nil
}

// CreatePreinscriptionRequest represents a new application payload
type CreatePreinscriptionRequest struct {
	CandidateID uuid.UUID `json:"candidat_id" validate:"required"`
	Project     string    `json:"projet"`
	Source      *string   `json:"source"`
}

// CreatePreinscription handles filing an application for a candidate
func (h *DossierHandlers) CreatePreinscription(c echo.Context) error {
	db, programme, err := h.routed(c)
	if err != nil {
		return err
	}

	var req CreatePreinscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.CandidateID == uuid.Nil {
		return common.SendValidationError(c, "candidat_id", "is required")
	}

	p := &models.Preinscription{
		ID:          uuid.New(),
		ProgrammeID: programme.ID,
		CandidateID: req.CandidateID,
		Project:     req.Project,
		Source:      req.Source,
		Status:      "recue",
	}
	if err := repositories.NewPreinscriptionRepo(db).Create(c.Request().Context(), p); err != nil {
		return common.SendServerError(c, "Failed to create preinscription")
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPreinscriptions handles listing the routed programme's applications
func (h *DossierHandlers) ListPreinscriptions(c echo.Context) error {
	db, programme, err := h.routed(c)
	if err != nil {
		return err
	}

	var req ListCandidatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	list, err := repositories.NewPreinscriptionRepo(db).List(c.Request().Context(), programme.ID, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list preinscriptions")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"preinscriptions": list})
}

// UpdatePreinscriptionStatus handles moving an application through the
// pipeline
func (h *DossierHandlers) UpdatePreinscriptionStatus(c echo.Context) error {
	db, _, err := h.routed(c)
	if err != nil {
		return err
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req struct {
		Status string `json:"statut" validate:"required"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Statut is required")
	}

	if err := repositories.NewPreinscriptionRepo(db).UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return common.SendServerError(c, "Failed to update preinscription")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Preinscription updated"})
}

// CreateInscriptionRequest represents an enrollment payload
type CreateInscriptionRequest struct {
	CandidateID uuid.UUID  `json:"candidat_id" validate:"required"`
	Promotion   string     `json:"promotion"`
	EntryDate   *time.Time `json:"date_entree"`
}

// CreateInscription handles enrolling an admitted candidate
func (h *DossierHandlers) CreateInscription(c echo.Context) error {
	db, programme, err := h.routed(c)
	if err != nil {
		return err
	}

	var req CreateInscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.CandidateID == uuid.Nil {
		return common.SendValidationError(c, "candidat_id", "is required")
	}

	entryDate := time.Now()
	if req.EntryDate != nil {
		entryDate = *req.EntryDate
	}
	ins := &models.Inscription{
		ID:          uuid.New(),
		ProgrammeID: programme.ID,
		CandidateID: req.CandidateID,
		Promotion:   req.Promotion,
		Status:      "active",
		EntryDate:   entryDate,
	}
	if err := repositories.NewInscriptionRepo(db).Create(c.Request().Context(), ins); err != nil {
		return common.SendServerError(c, "Failed to create inscription")
	}
	return c.JSON(http.StatusCreated, ins)
}

// ListInscriptions handles listing the routed programme's enrollments
func (h *DossierHandlers) ListInscriptions(c echo.Context) error {
	db, programme, err := h.routed(c)
	if err != nil {
		return err
	}

	var req ListCandidatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	list, err := repositories.NewInscriptionRepo(db).List(c.Request().Context(), programme.ID, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list inscriptions")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"inscriptions": list})
}

// CreateEnterpriseRequest represents the enterprise payload
type CreateEnterpriseRequest struct {
	CandidateID  uuid.UUID  `json:"candidat_id" validate:"required"`
	LegalName    string     `json:"raison_sociale" validate:"required"`
	Siret        *string    `json:"siret"`
	LegalForm    *string    `json:"forme_juridique"`
	CreationDate *time.Time `json:"date_creation"`
}

// CreateEnterprise handles recording a candidate's enterprise
func (h *DossierHandlers) CreateEnterprise(c echo.Context) error {
	db, programme, err := h.routed(c)
	if err != nil {
		return err
	}

	var req CreateEnterpriseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.CandidateID == uuid.Nil || req.LegalName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Candidat and raison sociale are required")
	}

	ent := &models.Enterprise{
		ID:           uuid.New(),
		ProgrammeID:  programme.ID,
		CandidateID:  req.CandidateID,
		LegalName:    req.LegalName,
		Siret:        req.Siret,
		LegalForm:    req.LegalForm,
		CreationDate: req.CreationDate,
	}
	if err := repositories.NewEnterpriseRepo(db).Create(c.Request().Context(), ent); err != nil {
		return common.SendServerError(c, "Failed to create enterprise")
	}
	return c.JSON(http.StatusCreated, ent)
}

// GetCandidateEnterprise handles fetching the enterprise attached to a
// candidate
func (h *DossierHandlers) GetCandidateEnterprise(c echo.Context) error {
	db, _, err := h.routed(c)
	if err != nil {
		return err
	}
	candidateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	ent, err := repositories.NewEnterpriseRepo(db).GetByCandidate(c.Request().Context(), candidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "enterprise")
		}
		return common.SendServerError(c, "Failed to get enterprise")
	}
	return c.JSON(http.StatusOK, ent)
}

// CreateDocumentRequest represents the document metadata payload
type CreateDocumentRequest struct {
	CandidateID uuid.UUID `json:"candidat_id" validate:"required"`
	Type        string    `json:"type"`
	Path        string    `json:"chemin" validate:"required"`
	Size        int64     `json:"taille"`
}

// CreateDocument handles attaching a document record to a candidate
func (h *DossierHandlers) CreateDocument(c echo.Context) error {
	db, programme, err := h.routed(c)
	if err != nil {
		return err
	}

	var req CreateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.CandidateID == uuid.Nil || req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Candidat and chemin are required")
	}

	doc := &models.Document{
		ID:          uuid.New(),
		ProgrammeID: programme.ID,
		CandidateID: req.CandidateID,
		Type:        req.Type,
		Path:        req.Path,
		Size:        req.Size,
	}
	if err := repositories.NewDocumentRepo(db).Create(c.Request().Context(), doc); err != nil {
		return common.SendServerError(c, "Failed to create document")
	}
	return c.JSON(http.StatusCreated, doc)
}

// ListCandidateDocuments handles listing a candidate's documents
func (h *DossierHandlers) ListCandidateDocuments(c echo.Context) error {
	db, _, err := h.routed(c)
	if err != nil {
		return err
	}
	candidateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	docs, err := repositories.NewDocumentRepo(db).ListByCandidate(c.Request().Context(), candidateID)
	if err != nil {
		return common.SendServerError(c, "Failed to list documents")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"documents": docs})
}

// CreateEligibilityRequest represents a scoring outcome payload
type CreateEligibilityRequest struct {
	CandidateID uuid.UUID `json:"candidat_id" validate:"required"`
	Score       float64   `json:"score"`
	Threshold   float64   `json:"seuil"`
	Comment     *string   `json:"commentaire"`
}

// CreateEligibility handles recording a candidate's eligibility score
func (h *DossierHandlers) CreateEligibility(c echo.Context) error {
	db, programme, err := h.routed(c)
	if err != nil {
		return err
	}

	var req CreateEligibilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.CandidateID == uuid.Nil {
		return common.SendValidationError(c, "candidat_id", "is required")
	}

	elig := &models.Eligibility{
		ID:          uuid.New(),
		ProgrammeID: programme.ID,
		CandidateID: req.CandidateID,
		Score:       req.Score,
		Threshold:   req.Threshold,
		Eligible:    req.Score >= req.Threshold,
		Comment:     req.Comment,
	}
	if err := repositories.NewEligibilityRepo(db).Create(c.Request().Context(), elig); err != nil {
		return common.SendServerError(c, "Failed to create eligibility")
	}
	return c.JSON(http.StatusCreated, elig)
}

// GetCandidateEligibility handles fetching the latest score for a candidate
func (h *DossierHandlers) GetCandidateEligibility(c echo.Context) error {
	db, _, err := h.routed(c)
	if err != nil {
		return err
	}
	candidateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	elig, err := repositories.NewEligibilityRepo(db).GetLatestByCandidate(c.Request().Context(), candidateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "eligibility")
		}
		return common.SendServerError(c, "Failed to get eligibility")
	}
	return c.JSON(http.StatusOK, elig)
}

// CreateJuryDecisionRequest represents a jury verdict payload
type CreateJuryDecisionRequest struct {
	CandidateID uuid.UUID  `json:"candidat_id" validate:"required"`
	Decision    string     `json:"decision" validate:"required"`
	Motivation  *string    `json:"motivation"`
	JuryDate    *time.Time `json:"date_jury"`
}

// CreateJuryDecision handles recording a jury verdict
func (h *DossierHandlers) CreateJuryDecision(c echo.Context) error {
	db, programme, err := h.routed(c)
	if err != nil {
		return err
	}

	var req CreateJuryDecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.CandidateID == uuid.Nil {
		return common.SendValidationError(c, "candidat_id", "is required")
	}
	switch req.Decision {
	case models.JuryDecisionAdmitted, models.JuryDecisionRejected, models.JuryDecisionDeferred:
	default:
		return common.SendValidationError(c, "decision", "unknown jury decision")
	}

	juryDate := time.Now()
	if req.JuryDate != nil {
		juryDate = *req.JuryDate
	}
	decision := &models.JuryDecision{
		ID:          uuid.New(),
		ProgrammeID: programme.ID,
		CandidateID: req.CandidateID,
		Decision:    req.Decision,
		Motivation:  req.Motivation,
		JuryDate:    juryDate,
	}
	if err := repositories.NewJuryDecisionRepo(db).Create(c.Request().Context(), decision); err != nil {
		return common.SendServerError(c, "Failed to create jury decision")
	}
	return c.JSON(http.StatusCreated, decision)
}

// ListJuryDecisions handles listing the routed programme's jury decisions
func (h *DossierHandlers) ListJuryDecisions(c echo.Context) error {
	db, programme, err := h.routed(c)
	if err != nil {
		return err
	}

	var req ListCandidatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	req.Limit, req.Offset = common.ValidatePaginationParams(req.Limit, req.Offset)

	list, err := repositories.NewJuryDecisionRepo(db).List(c.Request().Context(), programme.ID, req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list jury decisions")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"decisions": list})
}
