package patient

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/repository/memory"
	"github.com/openclinic/intake-api/internal/service/audit"
	apperrors "github.com/openclinic/intake-api/pkg/errors"
	"github.com/openclinic/intake-api/pkg/logger"
)

var (
	clinician      = model.Identity{UserID: 1, Role: model.RoleClinician}
	otherClinician = model.Identity{UserID: 2, Role: model.RoleClinician}
	admin          = model.Identity{UserID: 3, Role: model.RoleAdmin}
)

func newTestService() (*Service, *memory.AuditRepository) {
	auditRepo := memory.NewAuditRepository()
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewService(memory.NewPatientRepository(), audit.NewService(auditRepo, log)), auditRepo
}

func validRequest() *model.CreatePatientRequest {
	return &model.CreatePatientRequest{
		FullName:      "Jane Roe",
		DOB:           "1990-01-01",
		SSN:           "123-45-6789",
		Symptoms:      "cough",
		ClinicalNotes: "initial intake",
	}
}

func TestCreatePatient(t *testing.T) {
	svc, auditRepo := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest(), clinician)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, clinician.UserID, created.CreatorID)
	assert.Equal(t, "123-45-6789", created.SSN)

	entries, err := auditRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditActionCreatePatient, entries[0].Action)
	assert.Equal(t, clinician.UserID, entries[0].UserID)
	assert.Equal(t, model.RoleClinician, entries[0].Role)
	require.NotNil(t, entries[0].PatientID)
	assert.Equal(t, created.ID, *entries[0].PatientID)
}

func TestCreatePatientMissingFields(t *testing.T) {
	svc, auditRepo := newTestService()
	ctx := context.Background()

	req := validRequest()
	req.ClinicalNotes = ""

	_, err := svc.Create(ctx, req, clinician)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	// No audit entry for a failed create.
	entries, _ := auditRepo.List(ctx)
	assert.Empty(t, entries)
}

func TestCreatePatientBadSSNFormat(t *testing.T) {
	svc, _ := newTestService()

	for _, ssn := range []string{"123456789", "12-345-6789", "123-45-678", "123-45-67890"} {
		req := validRequest()
		req.SSN = ssn
		_, err := svc.Create(context.Background(), req, clinician)
		assert.True(t, apperrors.Is(err, apperrors.ErrValidation), "ssn %q", ssn)
	}
}

func TestCreatePatientDuplicateSSN(t *testing.T) {
	svc, auditRepo := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest(), clinician)
	require.NoError(t, err)

	_, err = svc.Create(ctx, validRequest(), otherClinician)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	// Exactly one create succeeded, so exactly one audit entry exists.
	entries, _ := auditRepo.List(ctx)
	assert.Len(t, entries, 1)
}

func TestListMasksSSNForClinician(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest(), clinician)
	require.NoError(t, err)

	visible, err := svc.List(ctx, clinician)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "***-**-6789", visible[0].SSN)

	// The stored record is untouched; an admin still sees it raw.
	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "123-45-6789", all[0].SSN)
}

func TestListScopedToCreator(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest(), clinician)
	require.NoError(t, err)

	other := validRequest()
	other.SSN = "987-65-4321"
	_, err = svc.Create(ctx, other, otherClinician)
	require.NoError(t, err)

	mine, err := svc.List(ctx, clinician)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, clinician.UserID, mine[0].CreatorID)

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListAuditsEachVisibleRecord(t *testing.T) {
	svc, auditRepo := newTestService()
	ctx := context.Background()

	for _, ssn := range []string{"123-45-6789", "987-65-4321", "555-12-0001"} {
		req := validRequest()
		req.SSN = ssn
		_, err := svc.Create(ctx, req, clinician)
		require.NoError(t, err)
	}

	visible, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, visible, 3)

	entries, err := auditRepo.ListByUser(ctx, admin.UserID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, model.AuditActionViewPatient, e.Action)
		assert.Equal(t, model.RoleAdmin, e.Role)
		require.NotNil(t, e.PatientID)
		assert.Equal(t, visible[i].ID, *e.PatientID)
	}
}

func TestAuditFailureDoesNotFailRequest(t *testing.T) {
	svc, auditRepo := newTestService()
	ctx := context.Background()
	auditRepo.FailCreates = true

	created, err := svc.Create(ctx, validRequest(), clinician)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	visible, err := svc.List(ctx, clinician)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}
