package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tigerfoodies/gofoodies/internal/domain"
)

func TestCard_Active(t *testing.T) {
	t.Parallel()

	now := time.Now()

	active := domain.Card{Expiration: now.Add(time.Minute)}
	assert.True(t, active.Active(now))

	expired := domain.Card{Expiration: now.Add(-time.Minute)}
	assert.False(t, expired.Active(now))

	// A card expiring exactly now is no longer active.
	boundary := domain.Card{Expiration: now}
	assert.False(t, boundary.Active(now))
}

func TestCard_Owner(t *testing.T) {
	t.Parallel()

	netID := "alice"
	owned := domain.Card{NetID: &netID}
	assert.Equal(t, "alice", owned.Owner())

	system := domain.Card{}
	assert.Empty(t, system.Owner())
}
