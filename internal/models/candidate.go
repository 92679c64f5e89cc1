package models

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is a person tracked through the incubation pipeline. Rows live in
// the public schema until their programme is partitioned, then only in the
// programme schema.
type Candidate struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProgrammeID int64     `json:"programme_id" db:"programme_id"`
	LastName    string    `json:"nom" db:"nom"`
	FirstName   string    `json:"prenom" db:"prenom"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"telephone" db:"telephone"`
	Status      string    `json:"statut" db:"statut"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Candidate statuses follow the pipeline order.
const (
	CandidateStatusPreinscribed = "preinscrit"
	CandidateStatusEligible     = "eligible"
	CandidateStatusAdmitted     = "admis"
	CandidateStatusRejected     = "refuse"
	CandidateStatusActive       = "actif"
	CandidateStatusAlumni       = "alumni"
)

// ValidCandidateStatus reports whether s is one of the known pipeline
// statuses.
func ValidCandidateStatus(s string) bool {
	switch s {
	case CandidateStatusPreinscribed, CandidateStatusEligible, CandidateStatusAdmitted,
		CandidateStatusRejected, CandidateStatusActive, CandidateStatusAlumni:
		return true
	}
	return false
}
