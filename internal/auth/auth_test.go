package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerfoodies/gofoodies/internal/auth"
	"github.com/tigerfoodies/gofoodies/internal/logger"
)

func casServer(t *testing.T, response string) *auth.CASClient {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/validate", r.URL.Path)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return auth.NewCASClient(logger.NewNoOp(), srv.URL+"/")
}

func TestCASClient_ValidateAccepted(t *testing.T) {
	t.Parallel()

	client := casServer(t, "yes\nfoobar\n")

	netID, err := client.Validate(context.Background(),
		"https://example.com/api/auth/login", "ST-1234")
	require.NoError(t, err)
	assert.Equal(t, "foobar", netID)
}

func TestCASClient_ValidateRejected(t *testing.T) {
	t.Parallel()

	client := casServer(t, "no\n\n")

	_, err := client.Validate(context.Background(),
		"https://example.com/api/auth/login", "ST-bogus")
	assert.ErrorIs(t, err, auth.ErrTicketRejected)
}

func TestCASClient_ValidateMalformedResponse(t *testing.T) {
	t.Parallel()

	client := casServer(t, "unexpected gateway page")

	_, err := client.Validate(context.Background(),
		"https://example.com/api/auth/login", "ST-1234")
	assert.ErrorIs(t, err, auth.ErrTicketRejected)
}

func TestStripTicket(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://example.com/login?ticket=ST-99":          "https://example.com/login",
		"https://example.com/login?ticket=ST-99&next=/":   "https://example.com/login?next=/",
		"https://example.com/login?next=/&ticket=ST-99":   "https://example.com/login?next=/",
		"https://example.com/login":                       "https://example.com/login",
	}

	for in, want := range cases {
		assert.Equal(t, want, auth.StripTicket(in), in)
	}
}

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := auth.NewIssuer("test-secret")

	token, err := issuer.Issue("foobar")
	require.NoError(t, err)

	netID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "foobar", netID)
}

func TestIssuer_RejectsForeignSignature(t *testing.T) {
	t.Parallel()

	token, err := auth.NewIssuer("secret-a").Issue("foobar")
	require.NoError(t, err)

	_, err = auth.NewIssuer("secret-b").Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIssuer_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := auth.NewIssuer("secret").Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRequireUser(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	issuer := auth.NewIssuer("test-secret")
	token, err := issuer.Issue("foobar")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/whoami", auth.RequireUser(issuer), func(c *gin.Context) {
		c.String(http.StatusOK, auth.NetID(c))
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "foobar", rec.Body.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("forged token", func(t *testing.T) {
		forged, err := auth.NewIssuer("other-secret").Issue("mallory")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
