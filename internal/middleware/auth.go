package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
)

const sessionKey = "session"

// Authenticator resolves a bearer token into the signed-in session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// Authorizer decides whether a session may pass.
type Authorizer interface {
	Authorize(s *models.Session) error
}

// TokenCookie holds the session token for browser requests to the admin page.
const TokenCookie = "learnhub_token"

// AuthMiddleware requires a valid token, from the Authorization header or the
// login cookie, whose user holds the stored session. The session is put in
// the gin context for the handlers.
func AuthMiddleware(authn Authenticator, log *logger.Logger) gin.HandlerFunc {
	return authenticate(authn, log.With("middleware", "AuthMiddleware"), false)
}

// QueryTokenMiddleware is AuthMiddleware that also accepts ?token=. Mount it
// only where a header cannot be sent: the query string ends up in proxy logs
// and browser history.
func QueryTokenMiddleware(authn Authenticator, log *logger.Logger) gin.HandlerFunc {
	return authenticate(authn, log.With("middleware", "QueryTokenMiddleware"), true)
}

func authenticate(authn Authenticator, log *logger.Logger, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, allowQuery)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		session, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Debug("authentication failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// AdminMiddleware lets only sessions accepted by gate through. Others get a
// 403 with a redirect hint to the home page.
func AdminMiddleware(gate Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := SessionFromContext(c)
		if err := gate.Authorize(session); err != nil {
			c.Header("Location", "/")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error(), "redirect": "/"})
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the session set by AuthMiddleware
func SessionFromContext(c *gin.Context) (*models.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	s, ok := v.(*models.Session)
	return s, ok && s != nil
}

func extractToken(c *gin.Context, allowQuery bool) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	if allowQuery {
		return c.Query("token")
	}
	return ""
}
