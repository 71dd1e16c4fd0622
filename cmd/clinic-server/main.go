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
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicapp/clinicapp/internal/config"
	"github.com/clinicapp/clinicapp/internal/domain/cashsession"
	"github.com/clinicapp/clinicapp/internal/domain/insurance"
	"github.com/clinicapp/clinicapp/internal/domain/patient"
	"github.com/clinicapp/clinicapp/internal/domain/payment"
	"github.com/clinicapp/clinicapp/internal/domain/posterminal"
	"github.com/clinicapp/clinicapp/internal/domain/reception"
	"github.com/clinicapp/clinicapp/internal/domain/triage"
	"github.com/clinicapp/clinicapp/internal/platform/auth"
	"github.com/clinicapp/clinicapp/internal/platform/db"
	"github.com/clinicapp/clinicapp/internal/platform/middleware"
	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

// ReceptionPaymentAdapter adapts the reception service to the
// payment.ReceptionChecker interface, avoiding a circular import between the
// payment and reception packages.
type ReceptionPaymentAdapter struct {
	svc *reception.Service
}

func NewReceptionPaymentAdapter(svc *reception.Service) *ReceptionPaymentAdapter {
	return &ReceptionPaymentAdapter{svc: svc}
}

// ReceptionAcceptsPayment implements payment.ReceptionChecker. Only billed
// receptions take payments: shares must be computed first, and settled or
// cancelled visits are final.
func (a *ReceptionPaymentAdapter) ReceptionAcceptsPayment(ctx context.Context, id uuid.UUID) (bool, error) {
	rec, err := a.svc.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return rec.Status == reception.StatusBilled, nil
}

// CashSessionAdapter adapts the cash session service to
// payment.CashSessionChecker.
type CashSessionAdapter struct {
	svc *cashsession.Service
}

func NewCashSessionAdapter(svc *cashsession.Service) *CashSessionAdapter {
	return &CashSessionAdapter{svc: svc}
}

func (a *CashSessionAdapter) CashSessionInfo(ctx context.Context, id uuid.UUID) (*payment.SessionInfo, error) {
	session, err := a.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &payment.SessionInfo{
		OwnerID: session.UserID,
		Active:  session.Status == cashsession.StatusActive,
	}, nil
}

// PosTerminalAdapter adapts the terminal service to
// payment.PosTerminalChecker.
type PosTerminalAdapter struct {
	svc *posterminal.Service
}

func NewPosTerminalAdapter(svc *posterminal.Service) *PosTerminalAdapter {
	return &PosTerminalAdapter{svc: svc}
}

func (a *PosTerminalAdapter) PosTerminalActive(ctx context.Context, id uuid.UUID) (bool, error) {
	term, err := a.svc.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return term.IsActive, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic practice-management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	// Health check stays public; everything under /api/v1 is authenticated.
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}
	// After auth, so the limiter keys on the user rather than a shared NAT IP.
	apiV1.Use(middleware.RateLimit(rateLimitConfig(cfg)))

	// Repositories
	patientRepo := patient.NewRepoPG(pool)
	receptionRepo := reception.NewRepoPG(pool)
	chargeRepo := reception.NewChargeRepoPG(pool)
	planRepo := insurance.NewPlanRepoPG(pool)
	patientInsuranceRepo := insurance.NewPatientInsuranceRepoPG(pool)
	paymentRepo := payment.NewRepoPG(pool)
	gatewayRepo := payment.NewGatewayRepoPG(pool)
	sessionRepo := cashsession.NewRepoPG(pool)
	terminalRepo := posterminal.NewRepoPG(pool)
	triageRepo := triage.NewRepoPG(pool)

	// Services
	patientSvc := patient.NewService(patientRepo)
	insuranceSvc := insurance.NewService(planRepo, patientInsuranceRepo)
	receptionSvc := reception.NewService(receptionRepo, chargeRepo, insuranceSvc)
	sessionSvc := cashsession.NewService(sessionRepo)
	terminalSvc := posterminal.NewService(terminalRepo)
	triageSvc := triage.NewService(triageRepo)

	paymentValidator := payment.NewValidator(
		NewReceptionPaymentAdapter(receptionSvc),
		NewCashSessionAdapter(sessionSvc),
		NewPosTerminalAdapter(terminalSvc),
		gatewayRepo,
	)
	paymentSvc := payment.NewService(paymentRepo, gatewayRepo, paymentValidator, sessionSvc, logger)

	// Handlers
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	insurance.NewHandler(insuranceSvc).RegisterRoutes(apiV1)
	reception.NewHandler(receptionSvc).RegisterRoutes(apiV1)
	cashsession.NewHandler(sessionSvc).RegisterRoutes(apiV1)
	posterminal.NewHandler(terminalSvc).RegisterRoutes(apiV1)
	payment.NewHandler(paymentSvc).RegisterRoutes(apiV1)
	triage.NewHandler(triageSvc).RegisterRoutes(apiV1)

	e.HTTPErrorHandler = errorHandler(logger)

	// Serve with graceful shutdown.
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	return nil
}

// rateLimitConfig applies configured overrides on top of the limiter defaults.
func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rc := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rc.RequestsPerSecond = cfg.RateLimitRPS
		rc.BurstSize = cfg.RateLimitBurst
	}
	return rc
}

// errorHandler renders every error through the uniform envelope.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := "internal server error"

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}
		if jsonErr := c.JSON(code, validation.Fail(message)); jsonErr != nil {
			logger.Error().Err(jsonErr).Msg("failed to write error response")
		}
	}
}
