package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repository"
)

// MaxAvatarBytes caps uploaded avatars. They are stored inline as data URLs.
const MaxAvatarBytes = 2 << 20

var errNotImage = errors.New("avatar must be an image")

type ProfileHandler struct {
	profileRepo *repository.ProfileRepository
	prefRepo    *repository.PreferenceRepository
	log         *logger.Logger
}

func NewProfileHandler(profileRepo *repository.ProfileRepository, prefRepo *repository.PreferenceRepository, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileRepo: profileRepo,
		prefRepo:    prefRepo,
		log:         log.With("handler", "ProfileHandler"),
	}
}

// GetProfile returns the profile with defaults applied
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, err := h.profileRepo.Load(c.Request.Context(), currentSession(c).Username)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProfile saves name, avatar and bio
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req models.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.profileRepo.Save(c.Request.Context(), currentSession(c).Username, req)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to save profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// ClearProfile removes the stored profile
func (h *ProfileHandler) ClearProfile(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.profileRepo.Clear(ctx); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to clear profile")
		return
	}

	p, err := h.profileRepo.Load(ctx, currentSession(c).Username)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// UploadAvatar stores an uploaded image file as the avatar
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "avatar file is required")
		return
	}
	if fh.Size > MaxAvatarBytes {
		ErrorResponse(c, http.StatusRequestEntityTooLarge, "avatar is too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "failed to read avatar")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxAvatarBytes+1))
	if err != nil || len(data) > MaxAvatarBytes {
		ErrorResponse(c, http.StatusBadRequest, "failed to read avatar")
		return
	}

	dataURL, err := avatarDataURL(data)
	if err != nil {
		ErrorResponse(c, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	ctx := c.Request.Context()
	username := currentSession(c).Username
	p, err := h.profileRepo.Load(ctx, username)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	p.Avatar = dataURL

	p, err = h.profileRepo.Save(ctx, username, p)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	h.log.Info("avatar updated", "username", username, "bytes", len(data))
	c.JSON(http.StatusOK, p)
}

func avatarDataURL(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", errNotImage
	}
	mime := strings.SplitN(mt.String(), ";", 2)[0]
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// GetTheme returns the stored theme
func (h *ProfileHandler) GetTheme(c *gin.Context) {
	theme, err := h.prefRepo.Theme(c.Request.Context())
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load theme")
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// SetTheme stores the theme
func (h *ProfileHandler) SetTheme(c *gin.Context) {
	var req models.ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.prefRepo.SetTheme(c.Request.Context(), req.Theme)
	if errors.Is(err, models.ErrInvalidTheme) {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to save theme")
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}
