// Package httpd runs the TigerFoodies server: the HTTP API, the live-update
// socket, and the background job scheduler.
package httpd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tigerfoodies/gofoodies/internal/api"
	"github.com/tigerfoodies/gofoodies/internal/auth"
	"github.com/tigerfoodies/gofoodies/internal/config"
	"github.com/tigerfoodies/gofoodies/internal/database"
	"github.com/tigerfoodies/gofoodies/internal/listserv"
	"github.com/tigerfoodies/gofoodies/internal/live"
	"github.com/tigerfoodies/gofoodies/internal/logger"
	"github.com/tigerfoodies/gofoodies/internal/mail"
	"github.com/tigerfoodies/gofoodies/internal/scheduler"
	"github.com/tigerfoodies/gofoodies/internal/sweep"
)

const shutdownTimeout = 30 * time.Second

// Command returns the httpd subcommand.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Run the server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return Start()
		},
	}
}

// Start runs the server until interrupted, then shuts down gracefully.
func Start() error {
	// Phase 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Phase 2: logger
	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	// Phase 3: database and schema
	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	cards := database.NewCardRepository(db)
	comments := database.NewCommentRepository(db)
	users := database.NewUserRepository(db)

	// Imported cards reference the system account, so its row must exist.
	if err := users.Ensure(ctx, cfg.App.SystemAccount); err != nil {
		return fmt.Errorf("failed to ensure system account: %w", err)
	}

	// Phase 4: live-update fanout
	registry := live.NewRegistry(log)
	notifier := live.NewNotifier(log, registry)

	// Phase 5: background jobs
	sched := scheduler.New(log)
	sched.Register(sweep.NewJob(log, cards), cfg.App.JobInterval)

	if cfg.Listserv.Enabled() {
		feed := listserv.NewClient(log, cfg.Listserv.URL,
			cfg.Listserv.Username, cfg.Listserv.Password)
		sched.Register(
			listserv.NewJob(log, feed, cards, cfg.App.SystemAccount, cfg.App.CardTTL),
			cfg.App.JobInterval,
		)
	} else {
		log.Warn("Feed ingestion disabled; no listserv URL configured")
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() { _ = sched.Stop() }()

	// Phase 6: HTTP server
	var mailer mail.Sender
	if cfg.Mail.APIKey != "" {
		mailer = mail.NewSendGridSender(log, cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.To)
	} else {
		mailer = mail.NewLogSender(log)
	}

	server := api.NewServer(log, api.Options{
		Cards:         cards,
		Comments:      comments,
		Users:         users,
		Registry:      registry,
		Notifier:      notifier,
		Issuer:        auth.NewIssuer(cfg.CAS.TokenSecret),
		CAS:           auth.NewCASClient(log, cfg.CAS.BaseURL),
		Mailer:        mailer,
		CardTTL:       cfg.App.CardTTL,
		SystemAccount: cfg.App.SystemAccount,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil &&
			!errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()
	log.Info("Server listening", "address", cfg.Server.Address)

	// Phase 7: run until interrupted
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case serveErr := <-errChan:
		return fmt.Errorf("server error: %w", serveErr)
	case sig := <-quit:
		log.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
