package main

import (
	"context"
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

	"github.com/telecare/telecare/internal/advisory"
	"github.com/telecare/telecare/internal/config"
	"github.com/telecare/telecare/internal/connectivity"
	"github.com/telecare/telecare/internal/domain/consult"
	"github.com/telecare/telecare/internal/domain/emergency"
	"github.com/telecare/telecare/internal/domain/identity"
	"github.com/telecare/telecare/internal/domain/pharmacy"
	"github.com/telecare/telecare/internal/domain/scheduling"
	"github.com/telecare/telecare/internal/platform/ai"
	"github.com/telecare/telecare/internal/platform/auth"
	"github.com/telecare/telecare/internal/platform/db"
	"github.com/telecare/telecare/internal/platform/middleware"
	"github.com/telecare/telecare/internal/platform/notification"
	"github.com/telecare/telecare/internal/platform/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "telecare-server",
		Short: "Telehealth API server",
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

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
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

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
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
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// AI provider shared by translation and the advisory generator.
	var aiClient *ai.Client
	if cfg.AIBaseURL != "" {
		aiClient = ai.NewClientWithBaseURL(cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL)
	} else {
		aiClient = ai.NewClient(cfg.AIAPIKey, cfg.AIModel)
	}

	// Connectivity monitor driven by a background probe against the AI
	// endpoint. The advisory resolver consults it before any network call.
	monitor := connectivity.NewMonitor(true)
	probeURL := cfg.AIBaseURL
	if probeURL == "" {
		probeURL = "https://api.openai.com/v1"
	}
	probeCtx, probeCancel := context.WithCancel(ctx)
	defer probeCancel()
	go connectivity.NewProber(monitor, probeURL, 30*time.Second).Run(probeCtx)
	monitor.Subscribe(func(online bool) {
		logger.Info().Bool("online", online).Msg("connectivity state")
	})

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", db.HealthHandler(pool))

	jwtCfg := auth.JWTConfig{SigningKey: []byte(cfg.JWTSecret), Issuer: "telecare"}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// The public group carries registration and login; everything else goes
	// through the authenticated group.
	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(jwtCfg))
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Event hub for captions, notices, and session events.
	hub := ws.NewHub()
	ws.NewHandler(hub).RegisterRoutes(apiV1)

	// Notifications
	templates := notification.NewTemplateEngine()
	logSender := notification.LogSender{Log: logger}
	notifyManager := notification.NewManager(logSender, logSender, templates, logger)
	notification.NewHandler(notifyManager).RegisterRoutes(apiV1)

	// Identity
	patientRepo := identity.NewPatientRepoPG(pool)
	addressRepo := identity.NewAddressRepoPG(pool)
	identitySvc := identity.NewService(patientRepo, addressRepo, jwtCfg)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1, public)

	// Pharmacy
	medicineRepo := pharmacy.NewMedicineRepoPG(pool)
	orderRepo := pharmacy.NewOrderRepoPG(pool)
	pharmacySvc := pharmacy.NewService(medicineRepo, orderRepo, &orderStatusNotifier{
		patients: identitySvc,
		notify:   notifyManager,
		log:      logger,
	})
	pharmacy.NewHandler(pharmacySvc).RegisterRoutes(apiV1)

	// Scheduling
	slotRepo := scheduling.NewSlotRepoPG(pool)
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	schedulingSvc := scheduling.NewService(slotRepo, apptRepo)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(apiV1)

	// Emergency dispatch
	dispatchRepo := emergency.NewRepoPG(pool)
	historyRepo := emergency.NewHistoryRepoPG(pool)
	emergencySvc := emergency.NewService(dispatchRepo, historyRepo, &dispatchStatusNotifier{
		patients: identitySvc,
		notify:   notifyManager,
		log:      logger,
	})
	emergency.NewHandler(emergencySvc).RegisterRoutes(apiV1)

	// Consult sessions with the live translation pipeline
	consultRepo := consult.NewRepoPG(pool)
	consultManager := consult.NewManager(aiClient, hub, consult.ManagerConfig{
		ChunkInterval:  cfg.ChunkInterval(),
		RequestTimeout: cfg.TranslateTimeout(),
	}, logger)
	consultSvc := consult.NewService(consultRepo, consultManager, hub, logger)
	consult.NewHandler(consultSvc).RegisterRoutes(apiV1)

	// Advisory (symptom checker and voice assistant)
	generator := advisory.NewAIGenerator(aiClient)
	resolver := advisory.NewResolver(generator, monitor, logger)
	advisory.NewHandler(resolver).RegisterRoutes(apiV1)

	// Serve with graceful shutdown.
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// orderStatusNotifier emails the patient on every order status change.
type orderStatusNotifier struct {
	patients *identity.Service
	notify   *notification.Manager
	log      zerolog.Logger
}

func (n *orderStatusNotifier) NotifyOrderStatus(ctx context.Context, o *pharmacy.Order) {
	p, err := n.patients.GetPatient(ctx, o.PatientID)
	if err != nil {
		n.log.Warn().Err(err).Str("order_id", o.ID.String()).Msg("order notification skipped, patient lookup failed")
		return
	}
	_, err = n.notify.SendFromTemplate(ctx, "order-status", map[string]string{
		"patient_name": p.Name,
		"order_id":     o.ID.String(),
		"status":       o.Status,
	}, p.Email)
	if err != nil {
		n.log.Warn().Err(err).Str("order_id", o.ID.String()).Msg("order notification failed")
	}
}

// dispatchStatusNotifier texts the patient on every dispatch status change.
// Patients without a phone number on file are skipped.
type dispatchStatusNotifier struct {
	patients *identity.Service
	notify   *notification.Manager
	log      zerolog.Logger
}

func (n *dispatchStatusNotifier) NotifyDispatchStatus(patientID, dispatchID uuid.UUID, status string) {
	ctx := context.Background()
	p, err := n.patients.GetPatient(ctx, patientID)
	if err != nil {
		n.log.Warn().Err(err).Str("dispatch_id", dispatchID.String()).Msg("dispatch notification skipped, patient lookup failed")
		return
	}
	if p.Phone == nil || *p.Phone == "" {
		return
	}
	_, err = n.notify.SendFromTemplate(ctx, "dispatch-update", map[string]string{
		"dispatch_id": dispatchID.String(),
		"status":      status,
	}, *p.Phone)
	if err != nil {
		n.log.Warn().Err(err).Str("dispatch_id", dispatchID.String()).Msg("dispatch notification failed")
	}
}
