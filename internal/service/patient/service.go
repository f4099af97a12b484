package patient

import (
	"context"
	"errors"
	"time"

	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/repository"
	"github.com/openclinic/intake-api/internal/service/audit"
	apperrors "github.com/openclinic/intake-api/pkg/errors"
)

type Service struct {
	patients repository.PatientRepository
	auditor  *audit.Service
}

func NewService(patients repository.PatientRepository, auditor *audit.Service) *Service {
	return &Service{patients: patients, auditor: auditor}
}

// Create validates and persists a new patient record for creator. The
// clinician-only role gate has already been applied at the handler
// boundary. The SSN uniqueness pre-check can race with a concurrent
// create; the unique constraint at the storage layer decides the winner
// and the losing insert surfaces as a conflict. Exactly one
// create_patient audit entry is recorded on success.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest, creator model.Identity) (*model.Patient, error) {
	if req.FullName == "" || req.DOB == "" || req.SSN == "" || req.Symptoms == "" || req.ClinicalNotes == "" {
		return nil, apperrors.Validation("missing patient fields")
	}
	if !ValidSSN(req.SSN) {
		return nil, apperrors.Validation("invalid SSN format, use XXX-XX-XXXX")
	}

	if _, err := s.patients.GetBySSN(ctx, req.SSN); err == nil {
		return nil, apperrors.Conflict("patient with this SSN already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	patient := &model.Patient{
		FullName:      req.FullName,
		DOB:           req.DOB,
		SSN:           req.SSN,
		Symptoms:      req.Symptoms,
		ClinicalNotes: req.ClinicalNotes,
		CreatorID:     creator.UserID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("patient with this SSN already exists")
		}
		return nil, apperrors.Internal(err)
	}

	s.auditor.Record(ctx, creator.UserID, creator.Role, model.AuditActionCreatePatient, &patient.ID)

	return patient, nil
}

// List returns the records visible to viewer. Admins see every record
// with the SSN unmasked; clinicians see only records they created, with
// the SSN masked. One view_patient audit entry is recorded per record
// returned.
func (s *Service) List(ctx context.Context, viewer model.Identity) ([]*model.Patient, error) {
	var (
		patients []*model.Patient
		err      error
	)
	if viewer.IsAdmin() {
		patients, err = s.patients.List(ctx)
	} else {
		patients, err = s.patients.ListByCreator(ctx, viewer.UserID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]*model.Patient, 0, len(patients))
	for _, p := range patients {
		cp := *p
		if !viewer.IsAdmin() {
			cp.SSN = MaskSSN(cp.SSN)
		}
		out = append(out, &cp)
		s.auditor.Record(ctx, viewer.UserID, viewer.Role, model.AuditActionViewPatient, &p.ID)
	}
	return out, nil
}
