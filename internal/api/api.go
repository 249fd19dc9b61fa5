// Package api exposes the HTTP surface: card and comment CRUD, sign-in,
// feedback, and the live-update socket.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tigerfoodies/gofoodies/internal/auth"
	"github.com/tigerfoodies/gofoodies/internal/domain"
	"github.com/tigerfoodies/gofoodies/internal/live"
	"github.com/tigerfoodies/gofoodies/internal/logger"
	"github.com/tigerfoodies/gofoodies/internal/mail"
)

// CardStore is the card persistence the handlers need.
type CardStore interface {
	ListActive(ctx context.Context) ([]*domain.Card, error)
	ListByOwner(ctx context.Context, netID string) ([]*domain.Card, error)
	Get(ctx context.Context, cardID int64) (*domain.Card, error)
	Insert(ctx context.Context, card *domain.Card) (int64, error)
	Update(ctx context.Context, card *domain.Card) error
	Delete(ctx context.Context, cardID int64) error
	Exists(ctx context.Context, cardID int64) (bool, error)
}

// CommentStore is the comment persistence the handlers need.
type CommentStore interface {
	ListByCard(ctx context.Context, cardID int64) ([]*domain.Comment, error)
	Insert(ctx context.Context, comment *domain.Comment) (int64, error)
}

// UserStore records identities on first verified access.
type UserStore interface {
	Ensure(ctx context.Context, netID string) error
}

// Options carries the server's collaborators.
type Options struct {
	Cards    CardStore
	Comments CommentStore
	Users    UserStore
	Registry *live.Registry
	Notifier *live.Notifier
	Issuer   *auth.Issuer
	CAS      *auth.CASClient
	Mailer   mail.Sender

	// CardTTL is applied to user-submitted cards at creation.
	CardTTL time.Duration
	// SystemAccount may edit or delete any card.
	SystemAccount string
}

// Server holds the handler set behind the router.
type Server struct {
	logger logger.Interface
	opts   Options
}

// NewServer creates the HTTP handler set.
func NewServer(log logger.Interface, opts Options) *Server {
	return &Server{
		logger: log.WithComponent("api"),
		opts:   opts,
	}
}

// Router builds the route table. Reads of the public card list and the
// socket upgrade are unauthenticated; every mutation requires a session.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	root := router.Group("/api")
	root.GET("/auth/login", s.handleLogin)
	root.GET("/cards", s.handleListCards)
	root.GET("/comments/:card_id", s.handleListComments)
	root.GET("/ws", s.handleSocket)

	authed := root.Group("", auth.RequireUser(s.opts.Issuer))
	authed.GET("/user", s.handleUser)
	authed.GET("/cards/mine", s.handleMyCards)
	authed.GET("/cards/:card_id", s.handleGetCard)
	authed.POST("/cards", s.handleCreateCard)
	authed.PUT("/cards/:card_id", s.handleEditCard)
	authed.DELETE("/cards/:card_id", s.handleDeleteCard)
	authed.POST("/comments/:card_id", s.handleCreateComment)
	authed.POST("/feedback", s.handleFeedback)

	return router
}

// canManage reports whether the caller may edit or delete a card. The
// system account acts as admin.
func (s *Server) canManage(netID string, card *domain.Card) bool {
	return card.Owner() == netID || netID == s.opts.SystemAccount
}
