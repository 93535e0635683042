package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repository"
)

type AuthHandler struct {
	authService  *auth.Service
	userRepo     *repository.UserRepository
	loginLimiter *middleware.RateLimiter
	log          *logger.Logger
}

func NewAuthHandler(authService *auth.Service, userRepo *repository.UserRepository, loginLimiter *middleware.RateLimiter, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		userRepo:     userRepo,
		loginLimiter: loginLimiter,
		log:          log.With("handler", "AuthHandler"),
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	switch {
	case errors.Is(err, repository.ErrUserExists):
		ErrorResponse(c, http.StatusConflict, err.Error())
		return
	case errors.Is(err, models.ErrPasswordTooShort):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error("register failed", "error", err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user.Public())
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if h.loginLimiter != nil && !h.loginLimiter.Allow(c.Request.Context(), strings.TrimSpace(req.Username)) {
		ErrorResponse(c, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.log.Error("login failed", "error", err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	setTokenCookie(c, resp.Token, 0)
	c.JSON(http.StatusOK, resp)
}

// Logout clears the stored session
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context()); err != nil {
		h.log.Error("logout failed", "error", err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to log out")
		return
	}
	setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// setTokenCookie lets a browser reach the admin page with the login token.
// A negative maxAge deletes the cookie.
func setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

// GetMe returns the current user and session
func (h *AuthHandler) GetMe(c *gin.Context) {
	session := currentSession(c)

	user, err := h.userRepo.Get(c.Request.Context(), session.Username)
	if errors.Is(err, repository.ErrUserNotFound) {
		ErrorResponse(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Public(), "session": session})
}
