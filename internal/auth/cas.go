// Package auth verifies campus identities via CAS and issues session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tigerfoodies/gofoodies/internal/logger"
)

// ErrTicketRejected is returned when the CAS server does not vouch for a
// ticket.
var ErrTicketRejected = errors.New("cas ticket rejected")

// ticketParam matches the ticket query parameter CAS appends to the service
// URL. It must be stripped before the URL is echoed back for validation.
var ticketParam = regexp.MustCompile(`ticket=[^&]*&?`)

var trailingSeparators = regexp.MustCompile(`\?&?$|&$`)

const casTimeout = 10 * time.Second

// CASClient validates login tickets against a CAS server using the v1
// plain-text protocol.
type CASClient struct {
	logger  logger.Interface
	baseURL string
	client  *http.Client
}

// NewCASClient creates a client for the CAS server at baseURL, which must end
// with a slash, e.g. https://fed.princeton.edu/cas/.
func NewCASClient(log logger.Interface, baseURL string) *CASClient {
	return &CASClient{
		logger:  log.WithComponent("cas"),
		baseURL: baseURL,
		client:  &http.Client{Timeout: casTimeout},
	}
}

// LoginURL returns the CAS login page that redirects back to serviceURL with
// a ticket attached.
func (c *CASClient) LoginURL(serviceURL string) string {
	return c.baseURL + "login?service=" + url.QueryEscape(serviceURL)
}

// StripTicket removes the ticket parameter from a service URL so validation
// sees the same URL the ticket was issued for.
func StripTicket(serviceURL string) string {
	serviceURL = ticketParam.ReplaceAllString(serviceURL, "")
	return trailingSeparators.ReplaceAllString(serviceURL, "")
}

// Validate asks the CAS server whether a ticket is good for serviceURL and
// returns the net ID it names. The v1 response is two lines: "yes" plus the
// username, or "no" plus a blank line.
func (c *CASClient) Validate(ctx context.Context, serviceURL, ticket string) (string, error) {
	validateURL := c.baseURL + "validate?service=" +
		url.QueryEscape(StripTicket(serviceURL)) +
		"&ticket=" + url.QueryEscape(ticket)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, validateURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create validate request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach cas server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read cas response: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "yes") {
		c.logger.Debug("Ticket rejected by cas", "service", serviceURL)
		return "", ErrTicketRejected
	}

	netID := strings.TrimSpace(lines[1])
	if netID == "" {
		return "", ErrTicketRejected
	}

	return netID, nil
}
