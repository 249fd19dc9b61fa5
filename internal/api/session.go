package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tigerfoodies/gofoodies/internal/auth"
)

// sessionMaxAge matches the token lifetime in whole seconds.
const sessionMaxAge = 24 * 60 * 60

// handleLogin completes CAS sign-in. Without a ticket the caller is
// redirected to the CAS login page; with one, the ticket is validated, the
// user row is ensured, and a session token is issued.
func (s *Server) handleLogin(c *gin.Context) {
	service := requestURL(c)

	ticket := c.Query("ticket")
	if ticket == "" {
		c.Redirect(http.StatusFound, s.opts.CAS.LoginURL(service))
		return
	}

	netID, err := s.opts.CAS.Validate(c.Request.Context(), service, ticket)
	if err != nil {
		// Stale or forged ticket; send the browser back for a new one.
		c.Redirect(http.StatusFound, s.opts.CAS.LoginURL(auth.StripTicket(service)))
		return
	}

	if err := s.opts.Users.Ensure(c.Request.Context(), netID); err != nil {
		s.serverError(c, "ensure user", err)
		return
	}

	token, err := s.opts.Issuer.Issue(netID)
	if err != nil {
		s.serverError(c, "issue session", err)
		return
	}

	c.SetCookie("session", token, sessionMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"net_id": netID, "token": token})
}

// handleUser returns the verified caller identity.
func (s *Server) handleUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"net_id": auth.NetID(c)})
}

type feedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

// handleFeedback forwards a bug report to the service account mailbox.
func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.opts.Mailer.SendFeedback(c.Request.Context(), auth.NetID(c), req.Feedback); err != nil {
		s.serverError(c, "send feedback", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// requestURL reconstructs the absolute URL CAS redirected to.
func requestURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}
