// Package domain defines the core data types persisted by the service.
package domain

import (
	"time"

	"github.com/lib/pq"
)

// Card is a short-lived listing for a free food event. Cards are created by
// user submission or by feed ingestion, and removed either explicitly or by
// the expiration sweep. There is no soft delete.
type Card struct {
	ID          int64          `db:"card_id" json:"card_id"`
	NetID       *string        `db:"net_id" json:"net_id"`
	Title       string         `db:"title" json:"title"`
	Description *string        `db:"description" json:"description"`
	PhotoURL    *string        `db:"photo_url" json:"photo_url"`
	Location    *string        `db:"location" json:"location"`
	Latitude    *float64       `db:"latitude" json:"latitude"`
	Longitude   *float64       `db:"longitude" json:"longitude"`
	DietaryTags pq.StringArray `db:"dietary_tags" json:"dietary_tags"`
	Allergies   pq.StringArray `db:"allergies" json:"allergies"`
	Expiration  time.Time      `db:"expiration" json:"expiration"`
	PostedAt    time.Time      `db:"posted_at" json:"posted_at"`
	UpdatedAt   *time.Time     `db:"updated_at" json:"updated_at"`
}

// Active reports whether the card's expiration is still in the future.
func (c *Card) Active(now time.Time) bool {
	return c.Expiration.After(now)
}

// Owner returns the owning net ID, or the empty string for system-sourced
// cards with no owner.
func (c *Card) Owner() string {
	if c.NetID == nil {
		return ""
	}
	return *c.NetID
}
