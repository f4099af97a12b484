package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, role, action, patient_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowContext(ctx, query,
			entry.UserID,
			entry.Role,
			entry.Action,
			entry.PatientID,
			entry.CreatedAt,
		).Scan(&entry.ID)
	})
}

// created_at is a TIMESTAMPTZ, so ascending order here is chronological.
func (r *auditRepository) List(ctx context.Context) ([]*model.AuditLog, error) {
	query := `SELECT * FROM audit_logs ORDER BY created_at ASC, id ASC`

	var entries []*model.AuditLog
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, nil
}

func (r *auditRepository) ListByUser(ctx context.Context, userID int64) ([]*model.AuditLog, error) {
	query := `SELECT * FROM audit_logs WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	var entries []*model.AuditLog
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list audit logs by user: %w", err)
	}
	return entries, nil
}

func (r *auditRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.AuditLog, error) {
	query := `SELECT * FROM audit_logs WHERE patient_id = $1 ORDER BY created_at ASC, id ASC`

	var entries []*model.AuditLog
	if err := r.db.SelectContext(ctx, &entries, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list audit logs by patient: %w", err)
	}
	return entries, nil
}
