package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/charging-hub/internal/application"
	"github.com/example/charging-hub/internal/config"
	httptransport "github.com/example/charging-hub/internal/http"
	"github.com/example/charging-hub/internal/logging"
	"github.com/example/charging-hub/internal/persistence/memory"
	"github.com/example/charging-hub/internal/persistence/postgres"
	"github.com/example/charging-hub/internal/token"
)

// storage is the backend contract main wires services against. Both the
// in-memory store and the PostgreSQL store satisfy it.
type storage interface {
	application.CustomerRepository
	application.EmployeeRepository
	application.ChargingPointRepository
	application.InstallationRepository
	application.RechargeRepository
	Migrate(ctx context.Context) error
	Close() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger := logging.New("production")
		logger.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	logger := logging.New(cfg.Environment)
	if cfg.GeneratedSecret {
		logger.Warn().Msg("no token secret configured, generated an ephemeral one; issued tokens will not survive restarts")
	}

	var store storage
	switch {
	case cfg.DatabaseURL == "" && cfg.IsDevelopment():
		logger.Warn().Msg("no database configured, using the in-memory store; data will not survive restarts")
		store = memory.Open()
	default:
		pg, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error().Err(err).Msg("failed to open storage")
			os.Exit(1)
		}
		store = pg
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("failed to close storage")
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to apply migrations")
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error().Err(err).Str("dir", cfg.UploadDir).Msg("failed to create upload directory")
		os.Exit(1)
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	idGenerator := uuid.NewString
	now := time.Now

	accountService := application.NewAccountService(store, tokens, idGenerator, now, &logger)
	employeeService := application.NewEmployeeService(store, tokens, idGenerator, now, &logger)
	pointService := application.NewChargingPointService(store, idGenerator, now, &logger)
	installationService := application.NewInstallationService(store, idGenerator, now, &logger)
	rechargeService := application.NewRechargeService(store, idGenerator, now, &logger)

	auth := httptransport.NewAuthenticator(tokens, employeeService, &logger)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Accounts:       httptransport.NewAccountHandler(accountService, cfg.UploadDir, &logger),
		Employees:      httptransport.NewEmployeeHandler(employeeService, cfg.UploadDir, &logger),
		ChargingPoints: httptransport.NewChargingPointHandler(pointService, &logger),
		Installations:  httptransport.NewInstallationHandler(installationService, employeeService, &logger),
		Recharges:      httptransport.NewRechargeHandler(rechargeService, &logger),
		Admin:          httptransport.NewAdminHandler(accountService, employeeService, &logger),
		Auth:           auth,
		Logger:         logger,
		UploadDir:      cfg.UploadDir,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to shutdown server")
		}
	}()

	logger.Info().Str("addr", server.Addr).Str("env", cfg.Environment).Msg("charging hub API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server encountered error")
		os.Exit(1)
	}
}
