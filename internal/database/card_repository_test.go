package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tigerfoodies/gofoodies/internal/database"
	"github.com/tigerfoodies/gofoodies/internal/domain"
)

func newCardRepo(t *testing.T) (*database.CardRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	return database.NewCardRepository(sqlx.NewDb(mockDB, "postgres")), mock
}

func cardRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"card_id", "net_id", "title", "description", "photo_url", "location",
		"latitude", "longitude", "dietary_tags", "allergies",
		"expiration", "posted_at", "updated_at",
	})
}

func TestCardRepository_ListActive(t *testing.T) {
	repo, mock := newCardRepo(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM cards WHERE expiration > NOW").
		WillReturnRows(cardRows().
			AddRow(2, "alice", "Cookies", nil, nil, nil, nil, nil,
				"{vegan}", "{}", now.Add(time.Hour), now, nil).
			AddRow(1, nil, "Bagels", nil, nil, nil, nil, nil,
				"{}", "{}", now.Add(time.Hour), now.Add(-time.Minute), nil))

	cards, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}

	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Title != "Cookies" || cards[0].Owner() != "alice" {
		t.Errorf("unexpected first card: %+v", cards[0])
	}
	if cards[1].Owner() != "" {
		t.Errorf("expected system card to have no owner, got %q", cards[1].Owner())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCardRepository_ListActive_Empty(t *testing.T) {
	repo, mock := newCardRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM cards WHERE expiration > NOW").
		WillReturnRows(cardRows())

	cards, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if cards == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestCardRepository_Get_NotFound(t *testing.T) {
	repo, mock := newCardRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM cards WHERE card_id").
		WithArgs(int64(99)).
		WillReturnRows(cardRows())

	_, err := repo.Get(context.Background(), 99)
	if !errors.Is(err, database.ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestCardRepository_Insert(t *testing.T) {
	repo, mock := newCardRepo(t)

	netID := "alice"
	now := time.Now()
	card := &domain.Card{
		NetID:       &netID,
		Title:       "Free Pizza @ Frist",
		DietaryTags: pq.StringArray{"vegetarian"},
		Allergies:   pq.StringArray{},
		PostedAt:    now,
		Expiration:  now.Add(3 * time.Hour),
	}

	mock.ExpectQuery("INSERT INTO cards").
		WithArgs("alice", "Free Pizza @ Frist", nil, nil, nil, nil, nil,
			card.DietaryTags, card.Allergies, card.Expiration, card.PostedAt).
		WillReturnRows(sqlmock.NewRows([]string{"card_id"}).AddRow(42))

	id, err := repo.Insert(context.Background(), card)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id != 42 {
		t.Errorf("expected card_id=42, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCardRepository_Update_NotFound(t *testing.T) {
	repo, mock := newCardRepo(t)

	mock.ExpectExec("UPDATE cards").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Card{ID: 99, Title: "ghost"})
	if !errors.Is(err, database.ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestCardRepository_Delete(t *testing.T) {
	repo, mock := newCardRepo(t)

	mock.ExpectExec("DELETE FROM cards WHERE card_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 7); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestCardRepository_DeleteExpired(t *testing.T) {
	repo, mock := newCardRepo(t)

	mock.ExpectExec("DELETE FROM cards WHERE expiration <= NOW").
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteExpired(context.Background())
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}
}

func TestCardRepository_TitleExists(t *testing.T) {
	repo, mock := newCardRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("Free Pizza @ Frist").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.TitleExists(context.Background(), "Free Pizza @ Frist")
	if err != nil {
		t.Fatalf("TitleExists() error = %v", err)
	}
	if !exists {
		t.Error("expected title to exist")
	}
}
