package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (full_name, dob, ssn, symptoms, clinical_notes, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, query,
		patient.FullName,
		patient.DOB,
		patient.SSN,
		patient.Symptoms,
		patient.ClinicalNotes,
		patient.CreatorID,
		patient.CreatedAt,
	).Scan(&patient.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ssn: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) GetBySSN(ctx context.Context, ssn string) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE ssn = $1`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, ssn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient by ssn: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT * FROM patients ORDER BY id`

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ListByCreator(ctx context.Context, creatorID int64) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE creator_id = $1 ORDER BY id`

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, creatorID); err != nil {
		return nil, fmt.Errorf("failed to list patients by creator: %w", err)
	}
	return patients, nil
}
