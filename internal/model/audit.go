package model

import "time"

// Audit action types
const (
	AuditActionCreatePatient = "create_patient"
	AuditActionViewPatient   = "view_patient"
)

// AuditLog is an immutable record of a privileged action against
// patient data. Role is a snapshot of the actor's role at action time.
// PatientID is a weak reference and may be nil for actions that do not
// target a specific patient.
type AuditLog struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	Action    string    `json:"action" db:"action"`
	PatientID *int64    `json:"patientId,omitempty" db:"patient_id"`
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}
