package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ehr/querybuilder/internal/config"
	"github.com/ehr/querybuilder/internal/domain/alerts"
	"github.com/ehr/querybuilder/internal/domain/collision"
	"github.com/ehr/querybuilder/internal/domain/infobutton"
	"github.com/ehr/querybuilder/internal/domain/ontology"
	"github.com/ehr/querybuilder/internal/domain/resultdisplay"
	"github.com/ehr/querybuilder/internal/platform/auth"
	"github.com/ehr/querybuilder/internal/platform/db"
	"github.com/ehr/querybuilder/internal/platform/metrics"
	"github.com/ehr/querybuilder/internal/platform/middleware"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "querybuilder",
		Short:        "i2b2 query builder service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(bannerCmd())
	rootCmd.AddCommand(importCmd())
	return rootCmd
}

func newLogger(dev bool) zerolog.Logger {
	if dev {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured ontology store. The returned Pinger backs
// the database health check.
func openStore(ctx context.Context, cfg *config.Config) (ontology.Store, db.Pinger, func(), error) {
	switch cfg.OntologyStore {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, nil, err
		}
		return ontology.NewRepoPG(pool), pool, pool.Close, nil
	default:
		s, err := ontology.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, nil, nil, err
		}
		return s, s, func() { s.Close() }, nil
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the query builder API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.IsDev())

	ctx := context.Background()
	store, pinger, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.OntologyStore).Msg("failed to open ontology store")
	}
	defer closeStore()
	logger.Info().Str("store", cfg.OntologyStore).Msg("ontology store ready")

	e := newServer(cfg, store, pinger, logger)

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

// newServer wires the HTTP API over store. pinger may be nil, in which case
// /health/db is not registered.
func newServer(cfg *config.Config, store ontology.Repository, pinger db.Pinger, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(cfg.DevRoles...))
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
			Skipper:    auth.AuthSkipper,
		}))
	}

	e.GET("/health", db.LivenessHandler(version))
	if pinger != nil {
		e.GET("/health/db", db.HealthHandler(cfg.OntologyStore, pinger))
	}
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	apiV1 := e.Group("/api/v1")

	ontSvc := ontology.NewService(store)
	ontology.NewHandler(ontSvc).RegisterRoutes(apiV1)
	infobutton.NewHandler(infobutton.NewService(cfg.InfoButtonConfig(), logger)).RegisterRoutes(apiV1)

	opts := cfg.CollisionOptions()
	opts.OnVerdict = func(v collision.Verdict) { metrics.ObserveVerdict(v) }
	checker := collision.NewChecker(opts, logger)
	collision.NewHandler(collision.NewService(ontSvc, checker, logger)).RegisterRoutes(apiV1)

	resultdisplay.NewHandler(resultdisplay.NewFormatter(cfg.DisplayConfig())).RegisterRoutes(apiV1)
	alerts.NewHandler(alerts.NewRenderer(cfg.AlertsConfig(), logger)).RegisterRoutes(apiV1)

	return e
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run Postgres ontology migrations",
	}

	withMigrator := func(cmd *cobra.Command, fn func(context.Context, *db.Migrator) error) error {
		dir, _ := cmd.Flags().GetString("dir")
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for migrations")
		}
		ctx := context.Background()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return err
		}
		defer pool.Close()
		return fn(ctx, db.NewMigrator(pool, dir, cfg.DBSchema))
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printStatus(cmd.OutOrStdout(), statuses)
				return nil
			})
		},
	}

	for _, c := range []*cobra.Command{upCmd, statusCmd} {
		c.Flags().String("dir", "./migrations", "Path to migrations directory")
		cmd.AddCommand(c)
	}
	return cmd
}

func printStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

// consoleDialog shows rejection dialogs on a terminal.
type consoleDialog struct {
	w     io.Writer
	title string
	body  string
}

func (d *consoleDialog) SetTitle(title string) { d.title = title }
func (d *consoleDialog) SetBody(html string)   { d.body = html }
func (d *consoleDialog) Center()               {}

func (d *consoleDialog) Show() {
	fmt.Fprintf(d.w, "== %s ==\n%s\n", d.title, d.body)
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a drop scenario from a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("fixture")
			paren, _ := cmd.Flags().GetString("paren-strip")
			verbose, _ := cmd.Flags().GetBool("verbose")

			strip, err := collision.ParseParenStrip(paren)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open fixture: %w", err)
			}
			defer f.Close()
			fx, err := collision.LoadFixture(f)
			if err != nil {
				return err
			}

			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level)

			out := cmd.OutOrStdout()
			checker := collision.NewChecker(collision.Options{
				ParenStrip: strip,
				Dialog:     func() collision.Dialog { return &consoleDialog{w: out} },
			}, logger)
			svc := collision.NewService(ontology.NewService(fx.Repository()), checker, logger)

			res, err := svc.CheckDrop(cmd.Context(), &fx.DropRequest)
			if err != nil {
				return err
			}
			if res.Allowed {
				fmt.Fprintln(out, "allowed")
			} else {
				fmt.Fprintf(out, "rejected: %s (%d)\n", res.Verdict, int(res.Verdict))
			}
			return nil
		},
	}
	cmd.Flags().String("fixture", "", "YAML drop fixture")
	cmd.Flags().String("paren-strip", string(collision.ParenStripLegacy), "IN list paren strip mode: legacy or exact")
	cmd.Flags().BoolP("verbose", "v", false, "Log each verdict")
	cmd.MarkFlagRequired("fixture")
	return cmd
}

func bannerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banner",
		Short: "Print the login banner with active alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, _ := cmd.Flags().GetString("at")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			acfg := cfg.AlertsConfig()
			if acfg.Location == nil {
				return fmt.Errorf("invalid ALERT_TIMEZONE %q", cfg.AlertTimezone)
			}

			now := time.Now()
			if at != "" {
				now, err = time.ParseInLocation(time.RFC3339, at, acfg.Location)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(zerolog.WarnLevel)
			fmt.Fprint(cmd.OutOrStdout(), alerts.NewRenderer(acfg, logger).Render(now))
			return nil
		},
	}
	cmd.Flags().String("at", "", "Render as of this RFC 3339 time instead of now")
	return cmd
}

// conceptFile is the YAML layout accepted by import.
type conceptFile struct {
	Concepts []ontology.Record `yaml:"concepts"`
}

func readConcepts(r io.Reader) ([]ontology.Record, error) {
	var f conceptFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode concepts: %w", err)
	}
	if len(f.Concepts) == 0 {
		return nil, fmt.Errorf("no concepts found")
	}
	return f.Concepts, nil
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load ontology concepts from YAML into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open concepts: %w", err)
			}
			defer f.Close()
			recs, err := readConcepts(f)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if sqlitePath, _ := cmd.Flags().GetString("sqlite"); sqlitePath != "" {
				cfg.OntologyStore, cfg.SQLitePath = config.StoreSQLite, sqlitePath
			}

			ctx := cmd.Context()
			store, _, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			n, err := ontology.NewService(store).Import(ctx, recs)
			if err != nil {
				return fmt.Errorf("import after %d concept(s): %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d concept(s) into %s store.\n", n, cfg.OntologyStore)
			return nil
		},
	}
	cmd.Flags().String("file", "", "YAML file with a concepts list")
	cmd.Flags().String("sqlite", "", "Import into this SQLite file instead of the configured store")
	cmd.MarkFlagRequired("file")
	return cmd
}
