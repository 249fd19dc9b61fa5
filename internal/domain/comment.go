package domain

import "time"

// Comment is a user comment on a card. Comments are removed only by the
// cascading deletion of their card.
type Comment struct {
	ID       int64     `db:"comment_id" json:"comment_id"`
	CardID   int64     `db:"card_id" json:"card_id"`
	NetID    string    `db:"net_id" json:"net_id"`
	Comment  string    `db:"comment" json:"comment"`
	PostedAt time.Time `db:"posted_at" json:"posted_at"`
}
