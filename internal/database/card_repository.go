package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tigerfoodies/gofoodies/internal/domain"
)

// ErrCardNotFound is returned when a card does not exist.
var ErrCardNotFound = errors.New("card not found")

// cardSelectColumns lists columns for SELECT queries on cards.
const cardSelectColumns = `card_id, net_id, title, description, photo_url, location,
	latitude, longitude, dietary_tags, allergies, expiration, posted_at, updated_at`

// CardRepository handles database operations for cards.
type CardRepository struct {
	db *sqlx.DB
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

// ListActive returns all unexpired cards, newest first.
func (r *CardRepository) ListActive(ctx context.Context) ([]*domain.Card, error) {
	query := `SELECT ` + cardSelectColumns + `
		FROM cards WHERE expiration > NOW() ORDER BY posted_at DESC`

	var cards []*domain.Card
	if err := r.db.SelectContext(ctx, &cards, query); err != nil {
		return nil, fmt.Errorf("failed to list active cards: %w", err)
	}

	if cards == nil {
		cards = []*domain.Card{}
	}

	return cards, nil
}

// ListByOwner returns all cards posted by a user, newest first.
func (r *CardRepository) ListByOwner(ctx context.Context, netID string) ([]*domain.Card, error) {
	query := `SELECT ` + cardSelectColumns + `
		FROM cards WHERE net_id = $1 ORDER BY posted_at DESC`

	var cards []*domain.Card
	if err := r.db.SelectContext(ctx, &cards, query, netID); err != nil {
		return nil, fmt.Errorf("failed to list cards for owner: %w", err)
	}

	if cards == nil {
		cards = []*domain.Card{}
	}

	return cards, nil
}

// Get returns a single card by ID. Returns ErrCardNotFound when absent.
func (r *CardRepository) Get(ctx context.Context, cardID int64) (*domain.Card, error) {
	query := `SELECT ` + cardSelectColumns + ` FROM cards WHERE card_id = $1`

	var card domain.Card
	if err := r.db.GetContext(ctx, &card, query, cardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return &card, nil
}

// Insert stores a new card and returns its assigned ID. The caller sets
// posted_at and expiration.
func (r *CardRepository) Insert(ctx context.Context, card *domain.Card) (int64, error) {
	query := `INSERT INTO cards (net_id, title, description, photo_url, location,
			latitude, longitude, dietary_tags, allergies, expiration, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING card_id`

	var cardID int64
	err := r.db.QueryRowContext(ctx, query,
		card.NetID, card.Title, card.Description, card.PhotoURL, card.Location,
		card.Latitude, card.Longitude, card.DietaryTags, card.Allergies,
		card.Expiration, card.PostedAt,
	).Scan(&cardID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card: %w", err)
	}

	return cardID, nil
}

// Update overwrites a card's editable fields and stamps updated_at.
// posted_at and expiration are immutable after creation.
func (r *CardRepository) Update(ctx context.Context, card *domain.Card) error {
	query := `UPDATE cards
		SET title = $2, description = $3, photo_url = $4, location = $5,
			latitude = $6, longitude = $7, dietary_tags = $8, allergies = $9,
			updated_at = NOW()
		WHERE card_id = $1`

	result, err := r.db.ExecContext(ctx, query,
		card.ID, card.Title, card.Description, card.PhotoURL, card.Location,
		card.Latitude, card.Longitude, card.DietaryTags, card.Allergies,
	)
	return requireRow(result, err, ErrCardNotFound)
}

// Delete removes a card permanently. Comments cascade in the store.
func (r *CardRepository) Delete(ctx context.Context, cardID int64) error {
	query := `DELETE FROM cards WHERE card_id = $1`

	result, err := r.db.ExecContext(ctx, query, cardID)
	return requireRow(result, err, ErrCardNotFound)
}

// DeleteExpired removes every card whose expiration has passed and returns
// the number of cards deleted. A single bulk statement, safe to repeat.
func (r *CardRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM cards WHERE expiration <= NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cards: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted cards: %w", err)
	}

	return deleted, nil
}

// TitleExists reports whether any card, active or expired, from any owner,
// carries exactly this title. This is the feed ingestion dedup probe.
func (r *CardRepository) TitleExists(ctx context.Context, title string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM cards WHERE title = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, title); err != nil {
		return false, fmt.Errorf("failed to check card title: %w", err)
	}

	return exists, nil
}

// Exists reports whether a card with the given ID is present.
func (r *CardRepository) Exists(ctx context.Context, cardID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM cards WHERE card_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, cardID); err != nil {
		return false, fmt.Errorf("failed to check card existence: %w", err)
	}

	return exists, nil
}
