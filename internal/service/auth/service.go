package auth

import (
	"context"
	"errors"
	"time"

	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/repository"
	apperrors "github.com/openclinic/intake-api/pkg/errors"
	"github.com/openclinic/intake-api/pkg/security"
)

const BcryptCost = 10

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// Signup creates a new user with a hashed password. The username
// uniqueness pre-check is optimistic; the storage constraint is the
// authoritative guard, so a duplicate insert also maps to a conflict.
func (s *Service) Signup(ctx context.Context, username, password, role string) (*model.User, error) {
	if username == "" || password == "" || role == "" {
		return nil, apperrors.Validation("missing username, password, or role")
	}
	if !model.ValidRole(role) {
		return nil, apperrors.Validation("role must be admin or clinician")
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.Conflict("username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("username already exists")
		}
		return nil, apperrors.Internal(err)
	}

	return user, nil
}

// Login verifies credentials. The error is identical for an unknown
// username and a wrong password so callers cannot probe which usernames
// exist.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.Validation("missing credentials")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	return user, nil
}
