package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrations holds the table definitions in dependency order. Statements are
// idempotent so Migrate can run on every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		net_id VARCHAR(20) PRIMARY KEY NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		card_id SERIAL PRIMARY KEY,
		net_id VARCHAR(20),
		title VARCHAR(100) NOT NULL,
		description VARCHAR(250),
		photo_url TEXT,
		location VARCHAR(255),
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		dietary_tags VARCHAR[] DEFAULT '{}',
		allergies VARCHAR[] DEFAULT '{}',
		expiration TIMESTAMP NOT NULL,
		posted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL,
		updated_at TIMESTAMP,
		FOREIGN KEY (net_id) REFERENCES users(net_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		comment_id SERIAL PRIMARY KEY NOT NULL,
		card_id INT REFERENCES cards(card_id) ON DELETE CASCADE NOT NULL,
		net_id VARCHAR(20) REFERENCES users(net_id) NOT NULL,
		comment VARCHAR(200) NOT NULL,
		posted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
	)`,
}

// Migrate creates the users, cards, and comments tables if they do not
// already exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
