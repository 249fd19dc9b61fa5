package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/tigerfoodies/gofoodies/internal/auth"
	"github.com/tigerfoodies/gofoodies/internal/database"
	"github.com/tigerfoodies/gofoodies/internal/domain"
	"github.com/tigerfoodies/gofoodies/internal/live"
)

// cardRequest is the JSON body for card creation and edits.
type cardRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	PhotoURL    *string  `json:"photo_url"`
	Location    *string  `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	DietaryTags []string `json:"dietary_tags"`
	Allergies   []string `json:"allergies"`
}

// apply copies the editable fields onto a card.
func (r *cardRequest) apply(card *domain.Card) {
	card.Title = r.Title
	card.Description = r.Description
	card.PhotoURL = r.PhotoURL
	card.Location = r.Location
	card.Latitude = r.Latitude
	card.Longitude = r.Longitude
	// Store empty arrays, not NULL, so readers always see a list.
	card.DietaryTags = pq.StringArray(r.DietaryTags)
	if card.DietaryTags == nil {
		card.DietaryTags = pq.StringArray{}
	}
	card.Allergies = pq.StringArray(r.Allergies)
	if card.Allergies == nil {
		card.Allergies = pq.StringArray{}
	}
}

func (s *Server) handleListCards(c *gin.Context) {
	cards, err := s.opts.Cards.ListActive(c.Request.Context())
	if err != nil {
		s.serverError(c, "list cards", err)
		return
	}

	c.JSON(http.StatusOK, cards)
}

func (s *Server) handleMyCards(c *gin.Context) {
	cards, err := s.opts.Cards.ListByOwner(c.Request.Context(), auth.NetID(c))
	if err != nil {
		s.serverError(c, "list own cards", err)
		return
	}

	c.JSON(http.StatusOK, cards)
}

// handleGetCard serves one card to its owner or the system account, for the
// edit view.
func (s *Server) handleGetCard(c *gin.Context) {
	card, ok := s.managedCard(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, card)
}

func (s *Server) handleCreateCard(c *gin.Context) {
	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	netID := auth.NetID(c)
	now := time.Now()
	card := &domain.Card{
		NetID:      &netID,
		PostedAt:   now,
		Expiration: now.Add(s.opts.CardTTL),
	}
	req.apply(card)

	id, err := s.opts.Cards.Insert(c.Request.Context(), card)
	if err != nil {
		s.serverError(c, "create card", err)
		return
	}
	card.ID = id

	s.opts.Notifier.Broadcast(live.EventCardCreated, id)
	c.JSON(http.StatusCreated, card)
}

func (s *Server) handleEditCard(c *gin.Context) {
	card, ok := s.managedCard(c)
	if !ok {
		return
	}

	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.apply(card)

	if err := s.opts.Cards.Update(c.Request.Context(), card); err != nil {
		if errors.Is(err, database.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		s.serverError(c, "edit card", err)
		return
	}

	s.opts.Notifier.Broadcast(live.EventCardEdited, card.ID)
	c.JSON(http.StatusOK, card)
}

func (s *Server) handleDeleteCard(c *gin.Context) {
	card, ok := s.managedCard(c)
	if !ok {
		return
	}

	if err := s.opts.Cards.Delete(c.Request.Context(), card.ID); err != nil {
		if errors.Is(err, database.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		s.serverError(c, "delete card", err)
		return
	}

	s.opts.Notifier.Broadcast(live.EventCardDeleted, card.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// managedCard loads the card named in the path and enforces ownership. On
// failure the response has already been written.
func (s *Server) managedCard(c *gin.Context) (*domain.Card, bool) {
	cardID, err := strconv.ParseInt(c.Param("card_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return nil, false
	}

	card, err := s.opts.Cards.Get(c.Request.Context(), cardID)
	if err != nil {
		if errors.Is(err, database.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return nil, false
		}
		s.serverError(c, "load card", err)
		return nil, false
	}

	if !s.canManage(auth.NetID(c), card) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your card"})
		return nil, false
	}

	return card, true
}

// serverError logs the cause and answers with an opaque 500.
func (s *Server) serverError(c *gin.Context, action string, err error) {
	s.logger.Error("Request failed", "action", action, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
