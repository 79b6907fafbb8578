package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/consultation"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/employee"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/specialty"
	"github.com/hms/hms/internal/domain/user"
	"github.com/hms/hms/internal/federation"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-server",
		Short: "Federated hospital management API server",
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
		Short: "Run database migrations on the regional databases",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations to every region",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			only, _ := cmd.Flags().GetString("shard")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			for _, decl := range cfg.Shards() {
				if only != "" && decl.Name != only {
					continue
				}
				pool, err := db.NewPool(ctx, decl.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
				if err != nil {
					return fmt.Errorf("connect %s: %w", decl.Name, err)
				}
				migrator := db.NewMigrator(pool, dir)
				count, err := migrator.Up(ctx)
				pool.Close()
				if err != nil {
					return fmt.Errorf("migrate %s: %w", decl.Name, err)
				}
				fmt.Printf("%s: applied %d migration(s)\n", decl.Name, count)
			}
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	upCmd.Flags().String("shard", "", "Apply to a single region (central, guayaquil, cuenca)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status per region",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			for _, decl := range cfg.Shards() {
				pool, err := db.NewPool(ctx, decl.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
				if err != nil {
					return fmt.Errorf("connect %s: %w", decl.Name, err)
				}
				migrator := db.NewMigrator(pool, dir)
				statuses, err := migrator.Status(ctx)
				pool.Close()
				if err != nil {
					return fmt.Errorf("status %s: %w", decl.Name, err)
				}

				fmt.Printf("Region %s:\n", decl.Name)
				fmt.Printf("  %-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					status := "pending"
					appliedAt := ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("  %-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// One pool per regional database, then the registry in declaration
	// order: central, guayaquil, cuenca.
	ctx := context.Background()
	urls := make(map[string]string)
	for _, decl := range cfg.Shards() {
		urls[decl.Name] = decl.DatabaseURL
	}
	pools, err := db.NewShardPools(ctx, urls, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to regional databases")
	}
	defer func() {
		for _, pool := range pools {
			pool.Close()
		}
	}()

	shards := make([]*federation.Shard, 0, len(pools))
	for _, decl := range cfg.Shards() {
		shards = append(shards, &federation.Shard{
			Name:     decl.Name,
			RegionID: decl.RegionID,
			Pool:     pools[decl.Name],
		})
		logger.Info().Str("shard", decl.Name).Int("region", decl.RegionID).Msg("connected to regional database")
	}
	registry, err := federation.NewRegistry(shards)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid shard registry")
	}

	// Background shard health monitor
	monitor := federation.NewMonitor(registry, logger, cfg.ShardTimeout())
	if err := monitor.Start(cfg.HealthPollInterval()); err != nil {
		logger.Fatal().Err(err).Msg("failed to start shard monitor")
	}
	defer monitor.Stop()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(cfg.JWTSecret))
	}

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pools))
	e.GET("/health/shards", func(c echo.Context) error {
		return c.JSON(http.StatusOK, monitor.Status())
	})

	// Domain services and routes
	api := e.Group("/api/v1")
	timeout := cfg.ShardTimeout()

	patientSvc := patient.NewService(registry, patient.NewRepoPG(), timeout)
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	doctorSvc := doctor.NewService(registry, doctor.NewRepoPG(), timeout)
	doctor.NewHandler(doctorSvc).RegisterRoutes(api)

	employeeSvc := employee.NewService(registry, employee.NewRepoPG(), timeout)
	employee.NewHandler(employeeSvc).RegisterRoutes(api)

	specialtySvc := specialty.NewService(registry, specialty.NewRepoPG(), timeout)
	specialty.NewHandler(specialtySvc).RegisterRoutes(api)

	userSvc := user.NewService(registry, user.NewRepoPG(), timeout)
	user.NewHandler(userSvc).RegisterRoutes(api)

	consultationSvc := consultation.NewService(registry, consultation.NewRepoPG(), timeout)
	consultation.NewHandler(consultationSvc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
