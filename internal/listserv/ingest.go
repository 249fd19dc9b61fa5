package listserv

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mmcdole/gofeed"

	"github.com/tigerfoodies/gofoodies/internal/domain"
	"github.com/tigerfoodies/gofoodies/internal/logger"
)

// ingestLookback bounds how far back a run reaches into the feed. Entries at
// or beyond the boundary are treated as already seen by an earlier run; the
// title dedup check covers any overlap between consecutive windows.
const ingestLookback = 30 * time.Minute

// pubDateFormat is the RFC-822-style timestamp the listserv emits, e.g.
// "Wed, 02 Oct 2024 13:45:00 +0000".
const pubDateFormat = time.RFC1123Z

// Source yields the raw feed document for one run.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Store is the slice of the card store the ingestion needs.
type Store interface {
	// TitleExists reports whether any card, active or expired, carries
	// exactly this title.
	TitleExists(ctx context.Context, title string) (bool, error)
	Insert(ctx context.Context, card *domain.Card) (int64, error)
}

// Job imports new feed entries as cards owned by the system account. There
// is no durable checkpoint between runs; the exact-title check against the
// store is the only dedup mechanism, so a legitimately recurring title is
// skipped as a duplicate.
type Job struct {
	logger        logger.Interface
	source        Source
	store         Store
	systemAccount string
	cardTTL       time.Duration
	parser        *gofeed.Parser
	now           func() time.Time
}

// JobOption configures an ingestion Job.
type JobOption func(*Job)

// WithClock overrides the job's time source. Used in tests to pin the
// recency threshold.
func WithClock(now func() time.Time) JobOption {
	return func(j *Job) {
		j.now = now
	}
}

// NewJob creates the feed ingestion job. Imported cards are owned by
// systemAccount and expire cardTTL after insertion.
func NewJob(
	log logger.Interface,
	source Source,
	store Store,
	systemAccount string,
	cardTTL time.Duration,
	opts ...JobOption,
) *Job {
	j := &Job{
		logger:        log.WithComponent("ingest"),
		source:        source,
		store:         store,
		systemAccount: systemAccount,
		cardTTL:       cardTTL,
		parser:        gofeed.NewParser(),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// Name identifies the job in scheduler logs.
func (j *Job) Name() string { return "feed-ingestion" }

// Run fetches the feed and inserts one card per new entry inside the
// lookback window. The feed is newest-first, so the walk stops at the first
// entry outside the window without inspecting the rest. Any failure aborts
// the remainder of the run; the next tick starts over with a fresh session.
func (j *Job) Run(ctx context.Context) error {
	body, err := j.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}

	feed, err := j.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse feed: %w", err)
	}

	threshold := j.now().Add(-ingestLookback)

	var inserted int
	for _, item := range feed.Items {
		published, err := time.Parse(pubDateFormat, item.Published)
		if err != nil {
			return fmt.Errorf("parse publish date %q: %w", item.Published, err)
		}

		// Exclusive threshold: an entry published exactly at the boundary
		// is already outside the window.
		if !published.After(threshold) {
			break
		}

		exists, err := j.store.TitleExists(ctx, item.Title)
		if err != nil {
			return fmt.Errorf("check title %q: %w", item.Title, err)
		}
		if exists {
			j.logger.Debug("Skipping already ingested entry", "title", item.Title)
			continue
		}

		if err := j.insert(ctx, item.Title); err != nil {
			return err
		}
		inserted++
	}

	if inserted > 0 {
		j.logger.Info("Imported feed entries", "inserted", inserted)
	}

	return nil
}

// insert stores one imported entry as a card with only a title.
func (j *Job) insert(ctx context.Context, title string) error {
	now := j.now()
	owner := j.systemAccount

	card := &domain.Card{
		NetID:       &owner,
		Title:       title,
		DietaryTags: pq.StringArray{},
		Allergies:   pq.StringArray{},
		PostedAt:    now,
		Expiration:  now.Add(j.cardTTL),
	}

	if _, err := j.store.Insert(ctx, card); err != nil {
		return fmt.Errorf("insert card %q: %w", title, err)
	}

	return nil
}
