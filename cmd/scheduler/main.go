package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/config"
	apihttp "github.com/example/campus-scheduler/internal/http"
	"github.com/example/campus-scheduler/internal/logging"
	"github.com/example/campus-scheduler/internal/notify"
	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/persistence/sqlite"
	"github.com/example/campus-scheduler/internal/recurrence"
)

func main() {
	if err := run(); err != nil {
		slog.Error("scheduler exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	var notifier notify.Notifier
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL)
		if err != nil {
			// The scheduler still works without the broker; events go to
			// the log until it comes back and the process restarts.
			logger.Warn("amqp unavailable, falling back to log notifications",
				slog.String("error", err.Error()))
			notifier = notify.NewLogNotifier(logger)
		} else {
			defer amqpNotifier.Close()
			notifier = amqpNotifier
		}
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	users := sqlite.NewUserRepository(db)
	rooms := sqlite.NewRoomRepository(db)
	catalog := sqlite.NewCatalogRepository(db)
	reservations := sqlite.NewReservationRepository(db)
	cleaningReports := sqlite.NewCleaningReportRepository(db)

	idGenerator := uuid.NewString
	clock := time.Now

	reservationService := application.NewReservationService(
		reservations, rooms, catalog, recurrence.NewEngine(time.UTC),
		notifier, idGenerator, clock)

	services := apihttp.Services{
		Auth:         application.NewAuthService(users, []byte(cfg.JWTSecret), cfg.TokenTTL, clock),
		Reservations: reservationService,
		Rooms:        application.NewRoomService(rooms, idGenerator, clock),
		Catalog:      application.NewCatalogService(catalog, catalog, catalog, catalog, idGenerator, clock),
		Users:        application.NewUserService(users, idGenerator, clock),
		Cleaning:     application.NewCleaningReportService(cleaningReports, rooms, idGenerator, clock),
	}

	if err := bootstrapAdmin(ctx, logger, users, idGenerator); err != nil {
		return err
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.CompletionSchedule, func() {
		sweepCtx, cancel := context.WithTimeout(logging.WithLogger(context.Background(), logger), time.Minute)
		defer cancel()
		if _, err := reservationService.CompletePastReservations(sweepCtx); err != nil {
			logger.Error("completion sweep failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid completion schedule %q: %w", cfg.CompletionSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           apihttp.NewHandler(logger, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("scheduler listening", slog.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// bootstrapAdmin creates the first administrator account from ADMIN_EMAIL
// and ADMIN_PASSWORD when the user table is empty, so a fresh deployment
// can log in.
func bootstrapAdmin(ctx context.Context, logger *slog.Logger, users persistence.UserRepository, idGenerator func() string) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	existing, err := users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	hash, err := application.HashPassword(password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	now := time.Now()
	err = users.CreateUser(ctx, persistence.User{
		ID:           idGenerator(),
		Email:        email,
		DisplayName:  "Administrator",
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	logger.Info("administrator account created", slog.String("email", email))
	return nil
}
