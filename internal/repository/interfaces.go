package repository

import (
	"context"
	"errors"

	"github.com/openclinic/intake-api/internal/model"
)

// Sentinel errors shared by all repository implementations.
var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique
	// constraint. The constraint at the storage layer is the
	// authoritative guard; callers must treat this as a first-class
	// conflict path, not rely on pre-checks alone.
	ErrDuplicate = errors.New("duplicate")
)

// All repository interfaces in one file
type (
	// UserRepository handles credential storage
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
	}

	// PatientRepository handles patient record storage
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		GetBySSN(ctx context.Context, ssn string) (*model.Patient, error)
		List(ctx context.Context) ([]*model.Patient, error)
		ListByCreator(ctx context.Context, creatorID int64) ([]*model.Patient, error)
	}

	// AuditRepository handles the append-only audit trail. List
	// operations return entries ordered by created_at ascending.
	AuditRepository interface {
		Create(ctx context.Context, entry *model.AuditLog) error
		List(ctx context.Context) ([]*model.AuditLog, error)
		ListByUser(ctx context.Context, userID int64) ([]*model.AuditLog, error)
		ListByPatient(ctx context.Context, patientID int64) ([]*model.AuditLog, error)
	}
)
