package models

import (
	"time"

	"github.com/google/uuid"
)

// Preinscription is the initial application a candidate files for a
// programme.
type Preinscription struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProgrammeID int64     `json:"programme_id" db:"programme_id"`
	CandidateID uuid.UUID `json:"candidat_id" db:"candidat_id"`
	Project     string    `json:"projet" db:"projet"`
	Source      *string   `json:"source" db:"source"`
	Status      string    `json:"statut" db:"statut"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Inscription is a confirmed enrollment into a programme promotion.
type Inscription struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProgrammeID int64     `json:"programme_id" db:"programme_id"`
	CandidateID uuid.UUID `json:"candidat_id" db:"candidat_id"`
	Promotion   string    `json:"promotion" db:"promotion"`
	Status      string    `json:"statut" db:"statut"`
	EntryDate   time.Time `json:"date_entree" db:"date_entree"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Enterprise is the business a candidate creates or develops during the
// programme.
type Enterprise struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ProgrammeID  int64      `json:"programme_id" db:"programme_id"`
	CandidateID  uuid.UUID  `json:"candidat_id" db:"candidat_id"`
	LegalName    string     `json:"raison_sociale" db:"raison_sociale"`
	Siret        *string    `json:"siret" db:"siret"`
	LegalForm    *string    `json:"forme_juridique" db:"forme_juridique"`
	CreationDate *time.Time `json:"date_creation" db:"date_creation"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Document is a file attached to a candidate's dossier. The binary itself
// lives in object storage; only the path is recorded here.
type Document struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProgrammeID int64     `json:"programme_id" db:"programme_id"`
	CandidateID uuid.UUID `json:"candidat_id" db:"candidat_id"`
	Type        string    `json:"type" db:"type"`
	Path        string    `json:"chemin" db:"chemin"`
	Size        int64     `json:"taille" db:"taille"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Eligibility records the scoring outcome for a candidate.
type Eligibility struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProgrammeID int64     `json:"programme_id" db:"programme_id"`
	CandidateID uuid.UUID `json:"candidat_id" db:"candidat_id"`
	Score       float64   `json:"score" db:"score"`
	Threshold   float64   `json:"seuil" db:"seuil"`
	Eligible    bool      `json:"eligible" db:"eligible"`
	Comment     *string   `json:"commentaire" db:"commentaire"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// JuryDecision records the jury's verdict on a candidate.
type JuryDecision struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProgrammeID int64     `json:"programme_id" db:"programme_id"`
	CandidateID uuid.UUID `json:"candidat_id" db:"candidat_id"`
	Decision    string    `json:"decision" db:"decision"`
	Motivation  *string   `json:"motivation" db:"motivation"`
	JuryDate    time.Time `json:"date_jury" db:"date_jury"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

const (
	JuryDecisionAdmitted = "admis"
	JuryDecisionRejected = "refuse"
	JuryDecisionDeferred = "ajourne"
)
