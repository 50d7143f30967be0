package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dropwishes/api/internal/api"
	"github.com/dropwishes/api/internal/config"
	"github.com/dropwishes/api/internal/core"
	"github.com/dropwishes/api/internal/db"
	"github.com/dropwishes/api/internal/logging"
	"github.com/dropwishes/api/internal/mail"
	"github.com/dropwishes/api/internal/metrics"
	"github.com/dropwishes/api/internal/storage"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "migrate":
			migrate(os.Args[2:])
			return
		case "create-superuser":
			createSuperuser(os.Args[2:])
			return
		}
	}

	migrateFlag := flag.Bool("migrate", true, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()

	// The db container accepts TCP connections before Postgres is ready to
	// serve queries, so always wait before migrating or listening.
	if err := db.WaitForDatabase(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("database never became available")
	}

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL(), *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	metrics.RegisterPgxPoolMetrics(pool)

	store := newStore(cfg)

	var mailer mail.Mailer = mail.NewSMTPMailer(cfg)
	if !cfg.EmailConfigured() {
		logger.Warn().Msg("email is not configured, OTP codes will only be logged")
		mailer = logMailer{logger: logger}
	}

	srv := api.NewServer(logger, pool, cfg, store, mailer)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}

func newStore(cfg *config.Config) storage.Store {
	if cfg.MediaBackend == config.MediaBackendS3 {
		return storage.NewS3Store(cfg)
	}
	return storage.NewDiskStore(cfg.MediaRoot)
}

// migrate runs the goose migrations and exits, for operators who want the
// schema step separate from serving.
func migrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dir := fs.String("dir", "migrations", "Migration files directory")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()

	if err := db.WaitForDatabase(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("database never became available")
	}

	if err := db.RunMigrations(cfg.DatabaseURL(), *dir); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Msg("migrations applied")
}

// createSuperuser provisions a staff account from the command line.
func createSuperuser(args []string) {
	fs := flag.NewFlagSet("create-superuser", flag.ExitOnError)
	email := fs.String("email", "", "Email for the account (required)")
	password := fs.String("password", "", "Password for the account (required)")
	firstName := fs.String("first-name", "Admin", "First name")
	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "error: --email and --password are required")
		fmt.Fprintln(os.Stderr, "usage: dropwishes-api create-superuser --email <email> --password <password>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := core.NewUserService(pool)
	user, err := svc.Create(ctx, core.NewUserParams{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		IsStaff:   true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create superuser: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Superuser created.\n\n")
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  ID:    %s\n", user.ID)
}

// logMailer is the dev fallback when no SMTP relay is configured. Mail
// contents go to the log instead of the wire.
type logMailer struct {
	logger zerolog.Logger
}

func (m logMailer) Send(to, subject, body string) error {
	m.logger.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("outbound email (not sent)")
	return nil
}
