package model

import "time"

// Patient represents an intake record. Records are created only by
// clinicians and are never updated or deleted.
type Patient struct {
	ID            int64     `json:"id" db:"id"`
	FullName      string    `json:"fullName" db:"full_name"`
	DOB           string    `json:"dob" db:"dob"`
	SSN           string    `json:"ssn" db:"ssn"`
	Symptoms      string    `json:"symptoms" db:"symptoms"`
	ClinicalNotes string    `json:"clinicalNotes" db:"clinical_notes"`
	CreatorID     int64     `json:"creatorId" db:"creator_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CreatePatientRequest represents patient creation parameters. The ssn
// rule is registered on the binding engine at router setup.
type CreatePatientRequest struct {
	FullName      string `json:"fullName" binding:"required"`
	DOB           string `json:"dob" binding:"required"`
	SSN           string `json:"ssn" binding:"required,ssn"`
	Symptoms      string `json:"symptoms" binding:"required"`
	ClinicalNotes string `json:"clinicalNotes" binding:"required"`
}
