package models

import (
	"errors"
	"strings"

	"github.com/learnhub/backend/internal/youtube"
)

// DefaultCategory is used when a course has no category.
const DefaultCategory = "featured"

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrInvalidVideoID = errors.New("video id must be 11 characters of [A-Za-z0-9_-]")
)

// Course is one catalog entry. JSON names match the stored list layout.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	VideoID     string `json:"videoId"`
	Duration    string `json:"duration"`
	Level       string `json:"level"`
	Category    string `json:"category"`
}

// Validate checks the stored-record invariants
func (c *Course) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrTitleRequired
	}
	if c.VideoID != "" && !youtube.IsValidID(c.VideoID) {
		return ErrInvalidVideoID
	}
	return nil
}

// DisplayThumbnail is the explicit thumbnail or the one derived from the video id.
func (c *Course) DisplayThumbnail() string {
	if c.Thumbnail != "" {
		return c.Thumbnail
	}
	return youtube.ThumbnailURL(c.VideoID)
}

// CourseInput is the raw editable form of a course: what the admin page form
// or an API client submits. Video may be a bare id or a
// full video URL.
type CourseInput struct {
	ID          string `json:"id" form:"id"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Thumbnail   string `json:"thumbnail" form:"thumbnail"`
	Video       string `json:"video" form:"video"`
	Duration    string `json:"duration" form:"duration"`
	Level       string `json:"level" form:"level"`
	Category    string `json:"category" form:"category"`
}

// ToCourse trims every field, extracts the video id (storing "" when none is
// found), derives the thumbnail when none was given and defaults the category.
// The id is passed through untouched; an empty id means "new".
func (in CourseInput) ToCourse() Course {
	videoID := youtube.ExtractID(in.Video)

	thumbnail := strings.TrimSpace(in.Thumbnail)
	if thumbnail == "" {
		thumbnail = youtube.ThumbnailURL(videoID)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	return Course{
		ID:          strings.TrimSpace(in.ID),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Thumbnail:   thumbnail,
		VideoID:     videoID,
		Duration:    strings.TrimSpace(in.Duration),
		Level:       strings.TrimSpace(in.Level),
		Category:    category,
	}
}

// InputFromCourse is the form representation of a stored course.
func InputFromCourse(c Course) CourseInput {
	category := c.Category
	if category == "" {
		category = DefaultCategory
	}
	return CourseInput{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Thumbnail:   c.Thumbnail,
		Video:       c.VideoID,
		Duration:    c.Duration,
		Level:       c.Level,
		Category:    category,
	}
}

// DashboardStats summarizes the catalog for the admin dashboard.
type DashboardStats struct {
	Courses     int    `json:"courses"`
	Users       int    `json:"users"`
	LastUpdated *int64 `json:"last_updated,omitempty"`
}
