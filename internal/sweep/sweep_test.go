package sweep_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerfoodies/gofoodies/internal/domain"
	"github.com/tigerfoodies/gofoodies/internal/logger"
	"github.com/tigerfoodies/gofoodies/internal/sweep"
)

// fakeStore keeps cards in memory and implements the sweep's bulk delete.
type fakeStore struct {
	mu    sync.Mutex
	cards []*domain.Card
	err   error
}

func (s *fakeStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return 0, s.err
	}

	now := time.Now()
	kept := s.cards[:0]
	var deleted int64
	for _, c := range s.cards {
		if c.Active(now) {
			kept = append(kept, c)
		} else {
			deleted++
		}
	}
	s.cards = kept
	return deleted, nil
}

func (s *fakeStore) titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c.Title)
	}
	return out
}

func card(title string, expiration time.Time) *domain.Card {
	return &domain.Card{Title: title, Expiration: expiration}
}

func TestJob_DeletesOnlyExpiredCards(t *testing.T) {
	t.Parallel()

	now := time.Now()
	store := &fakeStore{cards: []*domain.Card{
		card("expired a second ago", now.Add(-1*time.Second)),
		card("still good for an hour", now.Add(1*time.Hour)),
	}}

	job := sweep.NewJob(logger.NewNoOp(), store)
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []string{"still good for an hour"}, store.titles())
}

func TestJob_NothingExpired(t *testing.T) {
	t.Parallel()

	store := &fakeStore{cards: []*domain.Card{
		card("fresh", time.Now().Add(time.Hour)),
	}}

	job := sweep.NewJob(logger.NewNoOp(), store)
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, store.titles(), 1)
}

func TestJob_StoreErrorIsReturned(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection refused")
	store := &fakeStore{err: storeErr}

	job := sweep.NewJob(logger.NewNoOp(), store)
	err := job.Run(context.Background())

	// The scheduler wrapper logs and swallows this; the job itself must
	// surface it.
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
}

func TestJob_Idempotent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{cards: []*domain.Card{
		card("gone", time.Now().Add(-time.Minute)),
	}}

	job := sweep.NewJob(logger.NewNoOp(), store)
	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	assert.Empty(t, store.titles())
}
