// Command seed inserts the development users (an admin and a
// clinician) if the users table is empty. Safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openclinic/intake-api/internal/config"
	"github.com/openclinic/intake-api/internal/model"
	"github.com/openclinic/intake-api/internal/repository"
	"github.com/openclinic/intake-api/internal/repository/postgres"
	"github.com/openclinic/intake-api/internal/service/auth"
	"github.com/openclinic/intake-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	users := postgres.NewUserRepository(postgres.NewBaseRepository(db))
	hasher := security.NewBcryptHasher(auth.BcryptCost)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seeds := []struct {
		username, password, role string
	}{
		{"admin1", "adminpass", model.RoleAdmin},
		{"clinician1", "clinicianpass", model.RoleClinician},
	}

	for _, s := range seeds {
		if _, err := users.GetByUsername(ctx, s.username); err == nil {
			log.Info().Str("username", s.username).Msg("already seeded")
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			log.Fatal().Err(err).Msg("failed to check existing users")
		}

		hash, err := hasher.Hash(s.password)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to hash password")
		}

		user := &model.User{
			Username:     s.username,
			PasswordHash: hash,
			Role:         s.role,
			CreatedAt:    time.Now().UTC(),
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatal().Err(err).Str("username", s.username).Msg("failed to seed user")
		}
		log.Info().Str("username", s.username).Str("role", s.role).Msg("seeded user")
	}
}
