package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/repository"
	"github.com/openclinic/intake-api/pkg/logger"
)

type Service struct {
	repo repository.AuditRepository
	log  *logger.Logger
}

func NewService(repo repository.AuditRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record appends an audit entry with a timestamp captured at call time.
// A failed append is logged and swallowed: audit failures must never
// abort the caller's primary operation (availability over log
// completeness). The write itself happens inline, so the caller's
// response waits for it.
func (s *Service) Record(ctx context.Context, userID int64, role, action string, patientID *int64) {
	entry := &model.AuditLog{
		UserID:    userID,
		Role:      role,
		Action:    action,
		PatientID: patientID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Error(err, "failed to record audit entry",
			"user_id", userID, "action", action)
	}
}

func (s *Service) List(ctx context.Context) ([]*model.AuditLog, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*model.AuditLog, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs for user %d: %w", userID, err)
	}
	return entries, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]*model.AuditLog, error) {
	entries, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs for patient %d: %w", patientID, err)
	}
	return entries, nil
}
