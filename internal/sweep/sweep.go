// Package sweep deletes cards that have passed their expiration.
package sweep

import (
	"context"
	"fmt"

	"github.com/tigerfoodies/gofoodies/internal/logger"
)

// Store is the slice of the card store the sweep needs.
type Store interface {
	// DeleteExpired removes every expired card in one bulk statement and
	// returns the number deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}

// Job removes expired cards on every run. The delete is a single bulk
// statement, so a failed run leaves no partial state and the next run picks
// up exactly where this one would have.
type Job struct {
	logger logger.Interface
	store  Store
}

// NewJob creates the expiration sweep job.
func NewJob(log logger.Interface, store Store) *Job {
	return &Job{
		logger: log.WithComponent("sweep"),
		store:  store,
	}
}

// Name identifies the job in scheduler logs.
func (j *Job) Name() string { return "expiration-sweep" }

// Run deletes every card whose expiration is at or before now. Comments on
// those cards cascade away in the store.
func (j *Job) Run(ctx context.Context) error {
	deleted, err := j.store.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep expired cards: %w", err)
	}

	if deleted > 0 {
		j.logger.Info("Swept expired cards", "deleted", deleted)
	}

	return nil
}
