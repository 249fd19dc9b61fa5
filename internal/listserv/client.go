// Package listserv imports free food postings from the campus listserv's
// authenticated RSS endpoint.
package listserv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tigerfoodies/gofoodies/internal/logger"
)

const clientTimeout = 30 * time.Second

// Login form field names on the listserv web archive.
const (
	loginUserField     = "Y"
	loginPasswordField = "p"
)

// Client fetches the listserv feed behind its web login form. Every call to
// Fetch runs the full two-step flow with a fresh cookie jar; sessions are
// never reused across runs.
type Client struct {
	logger   logger.Interface
	url      string
	username string
	password string
}

// NewClient creates a feed client. The same URL serves the login form and,
// once the session cookie is set, the RSS document.
func NewClient(log logger.Interface, feedURL, username, password string) *Client {
	return &Client{
		logger:   log.WithComponent("listserv"),
		url:      feedURL,
		username: username,
		password: password,
	}
}

// Fetch authenticates and returns the raw feed document. The flow is: GET the
// login page, collect its hidden form fields, submit them back with the
// credentials merged in, then GET the feed on the authenticated session.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	// Session state lives in this client and dies with the run.
	session := &http.Client{Jar: jar, Timeout: clientTimeout}

	form, err := c.loginForm(ctx, session)
	if err != nil {
		return nil, err
	}

	if err := c.login(ctx, session, form); err != nil {
		return nil, err
	}

	return c.fetchFeed(ctx, session)
}

// loginForm fetches the login page and returns its hidden fields with the
// credentials merged in.
func (c *Client) loginForm(ctx context.Context, session *http.Client) (url.Values, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create login page request: %w", err)
	}

	resp, err := session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch login page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse login page: %w", err)
	}

	form := url.Values{}
	doc.Find(`input[type="hidden"]`).Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok {
			return
		}
		form.Set(name, sel.AttrOr("value", ""))
	})

	if len(form) == 0 {
		return nil, fmt.Errorf("login page has no hidden form fields")
	}

	form.Set(loginUserField, c.username)
	form.Set(loginPasswordField, c.password)

	return form, nil
}

// login submits the credential form; the session cookie lands in the jar.
func (c *Client) login(ctx context.Context, session *http.Client, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := session.Do(req)
	if err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	return nil
}

// fetchFeed retrieves the RSS document on the authenticated session.
func (c *Client) fetchFeed(ctx context.Context, session *http.Client) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}

	resp, err := session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	return body, nil
}
