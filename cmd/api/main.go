package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openclinic/intake-api/internal/config"
	auditHandler "github.com/openclinic/intake-api/internal/handler/audit"
	authHandler "github.com/openclinic/intake-api/internal/handler/auth"
	healthHandler "github.com/openclinic/intake-api/internal/handler/health"
	patientHandler "github.com/openclinic/intake-api/internal/handler/patient"
	"github.com/openclinic/intake-api/internal/middleware"
	"github.com/openclinic/intake-api/internal/repository/postgres"
	"github.com/openclinic/intake-api/internal/router"
	auditService "github.com/openclinic/intake-api/internal/service/audit"
	authService "github.com/openclinic/intake-api/internal/service/auth"
	patientService "github.com/openclinic/intake-api/internal/service/patient"
	"github.com/openclinic/intake-api/pkg/logger"
	"github.com/openclinic/intake-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	// The storage handle is owned here and handed to each component at
	// construction; its lifecycle is process start to shutdown.
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	auditRepo := postgres.NewAuditRepository(base)

	auditSvc := auditService.NewService(auditRepo, appLogger)
	authSvc := authService.NewService(userRepo, security.NewBcryptHasher(authService.BcryptCost))
	patientSvc := patientService.NewService(patientRepo, auditSvc)

	r := router.NewRouter(
		authHandler.NewHandler(authSvc),
		healthHandler.NewHandler(db.DB),
		patientHandler.NewHandler(patientSvc),
		auditHandler.NewHandler(auditSvc),
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORS:           middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
