// Package jobs provides one-shot commands for the background jobs, useful
// for cron-style deployments and manual runs.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/tigerfoodies/gofoodies/internal/config"
	"github.com/tigerfoodies/gofoodies/internal/database"
	"github.com/tigerfoodies/gofoodies/internal/listserv"
	"github.com/tigerfoodies/gofoodies/internal/logger"
	"github.com/tigerfoodies/gofoodies/internal/sweep"
)

var errIngestionDisabled = errors.New("no listserv URL configured")

// deps is the shared bootstrap for one-shot commands.
type deps struct {
	cfg *config.Config
	log logger.Interface
	db  *sqlx.DB
}

func setup() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.Connect(context.Background(), cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &deps{cfg: cfg, log: log, db: db}, nil
}

func (d *deps) close() {
	_ = d.db.Close()
}

// MigrateCommand creates or updates the database schema.
func MigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			defer d.close()

			return database.Migrate(cmd.Context(), d.db)
		},
	}
}

// SweepCommand runs the expiration sweep once.
func SweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired cards once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			defer d.close()

			job := sweep.NewJob(d.log, database.NewCardRepository(d.db))
			return job.Run(cmd.Context())
		},
	}
}

// IngestCommand runs feed ingestion once.
func IngestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Import new listserv postings once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := setup()
			if err != nil {
				return err
			}
			defer d.close()

			if !d.cfg.Listserv.Enabled() {
				return errIngestionDisabled
			}

			users := database.NewUserRepository(d.db)
			if err := users.Ensure(cmd.Context(), d.cfg.App.SystemAccount); err != nil {
				return err
			}

			feed := listserv.NewClient(d.log, d.cfg.Listserv.URL,
				d.cfg.Listserv.Username, d.cfg.Listserv.Password)
			job := listserv.NewJob(d.log, feed, database.NewCardRepository(d.db),
				d.cfg.App.SystemAccount, d.cfg.App.CardTTL)
			return job.Run(cmd.Context())
		},
	}
}
