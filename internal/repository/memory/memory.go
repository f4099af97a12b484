// Package memory provides in-memory repository implementations with the
// same uniqueness semantics as the postgres layer. They back the test
// suites; the unique checks are performed under a single lock so a
// duplicate insert conflicts atomically, mirroring the database
// constraint behavior.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/repository"
)

type UserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, users: make(map[int64]*model.User)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("username %q: %w", user.Username, repository.ErrDuplicate)
		}
	}

	user.ID = r.nextID
	r.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) Get(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type PatientRepository struct {
	mu       sync.Mutex
	nextID   int64
	patients []*model.Patient
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{nextID: 1}
}

func (r *PatientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.patients {
		if p.SSN == patient.SSN {
			return fmt.Errorf("ssn: %w", repository.ErrDuplicate)
		}
	}

	patient.ID = r.nextID
	r.nextID++
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now().UTC()
	}
	cp := *patient
	r.patients = append(r.patients, &cp)
	return nil
}

func (r *PatientRepository) GetBySSN(_ context.Context, ssn string) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.patients {
		if p.SSN == ssn {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PatientRepository) List(_ context.Context) ([]*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *PatientRepository) ListByCreator(_ context.Context, creatorID int64) ([]*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Patient, 0)
	for _, p := range r.patients {
		if p.CreatorID == creatorID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type AuditRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []*model.AuditLog

	// FailCreates makes Create return an error, for exercising the
	// audit-failure-is-non-fatal contract.
	FailCreates bool
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{nextID: 1}
}

func (r *AuditRepository) Create(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreates {
		return fmt.Errorf("audit store unavailable")
	}

	entry.ID = r.nextID
	r.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *AuditRepository) List(_ context.Context) ([]*model.AuditLog, error) {
	return r.filter(func(*model.AuditLog) bool { return true }), nil
}

func (r *AuditRepository) ListByUser(_ context.Context, userID int64) ([]*model.AuditLog, error) {
	return r.filter(func(e *model.AuditLog) bool { return e.UserID == userID }), nil
}

func (r *AuditRepository) ListByPatient(_ context.Context, patientID int64) ([]*model.AuditLog, error) {
	return r.filter(func(e *model.AuditLog) bool {
		return e.PatientID != nil && *e.PatientID == patientID
	}), nil
}

func (r *AuditRepository) filter(keep func(*model.AuditLog) bool) []*model.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.AuditLog, 0)
	for _, e := range r.entries {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
