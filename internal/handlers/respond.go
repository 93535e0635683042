package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/models"
)

// ErrorResponse sends a standardized error response and logs at caller if needed
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// currentSession returns the session AuthMiddleware put in the context. The
// routes using it are always behind that middleware.
func currentSession(c *gin.Context) *models.Session {
	s, _ := middleware.SessionFromContext(c)
	return s
}
