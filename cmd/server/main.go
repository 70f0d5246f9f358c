package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"letsassist/config"
	"letsassist/internal/adapters/auth"
	"letsassist/internal/adapters/email"
	"letsassist/internal/database"
	delivery "letsassist/internal/delivery/http"
	"letsassist/internal/delivery/http/controllers"
	"letsassist/internal/delivery/http/middleware"
	"letsassist/internal/repository/postgres"
	"letsassist/internal/scheduler"
	"letsassist/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Let's Assist API
// @version 1.0
// @description Volunteer matching API: projects, time slots, signups, and organizations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(db, logger); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SES.Region,
			AccessKeyID:        cfg.Email.SES.AccessKeyID,
			SecretAccessKey:    cfg.Email.SES.SecretAccessKey,
			InsecureSkipVerify: cfg.Email.SES.InsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	loginCodeRepo := postgres.NewLoginCodeRepository(db)
	orgRepo := postgres.NewOrganizationRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	signupRepo := postgres.NewSignupRepository(db)

	tokens := auth.NewJWTManager(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(12)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	authService := services.NewAuthService(userRepo, hasher, tokens, cfg.JWTExpiry, emailService)
	userService := services.NewUserService(userRepo, loginCodeRepo, tokens, cfg.JWTExpiry, emailService)
	orgService := services.NewOrganizationService(orgRepo, userRepo, serviceTimeout)
	projectService := services.NewProjectService(projectRepo, orgRepo, signupRepo, emailService, serviceTimeout, time.Now)
	signupService := services.NewSignupService(signupRepo, projectRepo, orgRepo, userRepo, emailService, serviceTimeout, time.Now)

	mux := delivery.NewRouter(
		logger,
		tokens,
		controllers.NewAuthController(logger, authService, userService),
		controllers.NewUserController(logger, userService),
		controllers.NewProjectController(logger, projectService),
		controllers.NewSignupController(logger, signupService),
		controllers.NewOrganizationController(logger, orgService),
	)

	var handler http.Handler = middleware.LoggingMiddleware(logger, mux)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)

	var reminders *scheduler.ReminderScheduler
	if cfg.RemindersEnabled {
		reminders = scheduler.NewReminderScheduler(logger, projectRepo, signupRepo, emailService)
		if err := reminders.Start(); err != nil {
			logger.Error("failed to start reminder scheduler", "err", err)
			os.Exit(1)
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	if reminders != nil {
		reminders.Stop()
	}
}
