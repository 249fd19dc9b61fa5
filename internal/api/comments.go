package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tigerfoodies/gofoodies/internal/auth"
	"github.com/tigerfoodies/gofoodies/internal/domain"
	"github.com/tigerfoodies/gofoodies/internal/live"
)

type commentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

func (s *Server) handleListComments(c *gin.Context) {
	cardID, ok := s.existingCardID(c)
	if !ok {
		return
	}

	comments, err := s.opts.Comments.ListByCard(c.Request.Context(), cardID)
	if err != nil {
		s.serverError(c, "list comments", err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (s *Server) handleCreateComment(c *gin.Context) {
	cardID, ok := s.existingCardID(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := &domain.Comment{
		CardID:  cardID,
		NetID:   auth.NetID(c),
		Comment: req.Comment,
	}

	id, err := s.opts.Comments.Insert(c.Request.Context(), comment)
	if err != nil {
		s.serverError(c, "create comment", err)
		return
	}
	comment.ID = id

	s.opts.Notifier.Broadcast(live.EventCommentCreated, cardID)
	c.JSON(http.StatusCreated, comment)
}

// existingCardID parses the card id from the path and verifies the card is
// present. On failure the response has already been written.
func (s *Server) existingCardID(c *gin.Context) (int64, bool) {
	cardID, err := strconv.ParseInt(c.Param("card_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return 0, false
	}

	exists, err := s.opts.Cards.Exists(c.Request.Context(), cardID)
	if err != nil {
		s.serverError(c, "check card", err)
		return 0, false
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return 0, false
	}

	return cardID, true
}
