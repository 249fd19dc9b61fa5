package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// netIDKey is the gin context key the middleware stores the caller under.
const netIDKey = "netID"

// sessionCookie carries the token for browser clients; API clients may use a
// bearer Authorization header instead.
const sessionCookie = "session"

// RequireUser rejects requests without a valid session token and records the
// verified net ID on the context.
func RequireUser(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				token = cookie
			}
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}

		netID, err := issuer.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		c.Set(netIDKey, netID)
		c.Next()
	}
}

// NetID returns the verified caller identity set by RequireUser.
func NetID(c *gin.Context) string {
	return c.GetString(netIDKey)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return header[len(prefix):]
	}
	return ""
}
