package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionIDKey = "session_id"

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session makes sure every request carries a session id. A missing or
// malformed cookie is replaced by a fresh UUIDv4.
func Session(cfg SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.TTL / time.Second)
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		// Refreshed on every response so the cookie outlives active use.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, maxAge, "/", "", cfg.Secure, true)
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionID returns the id set by Session, or "" when the middleware did not run.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
