package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/backend/internal/form"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/render"
	"github.com/learnhub/backend/internal/repository"
)

type CourseHandler struct {
	courseRepo *repository.CourseRepository
	userRepo   *repository.UserRepository
	prefRepo   *repository.PreferenceRepository
	log        *logger.Logger
}

func NewCourseHandler(courseRepo *repository.CourseRepository, userRepo *repository.UserRepository, prefRepo *repository.PreferenceRepository, log *logger.Logger) *CourseHandler {
	return &CourseHandler{
		courseRepo: courseRepo,
		userRepo:   userRepo,
		prefRepo:   prefRepo,
		log:        log.With("handler", "CourseHandler"),
	}
}

const coursesPagePath = "/admin/courses"

type courseResponse struct {
	Course  models.Course `json:"course"`
	Notices []form.Notice `json:"notices"`
}

// controller returns a fresh form controller whose output is captured for
// this request. HTTP callers confirm deletes themselves.
func (h *CourseHandler) controller() (*form.Controller, *render.Capture) {
	capture := &render.Capture{}
	return form.NewController(h.courseRepo, capture, form.AlwaysConfirm, h.log), capture
}

// ListCourses returns every course in stored order
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseRepo.LoadAll(c.Request.Context())
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load courses")
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourse returns one course
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseRepo.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrCourseNotFound) {
		ErrorResponse(c, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load course")
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourse adds a course from the submitted form fields
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var in models.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctrl, capture := h.controller()
	ctrl.SetFields(in)
	h.submit(c, ctrl, capture, http.StatusCreated)
}

// UpdateCourse replaces the course with the path id, keeping its position
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var in models.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctrl, capture := h.controller()
	err := ctrl.StartEdit(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrCourseNotFound) {
		ErrorResponse(c, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load course")
		return
	}

	ctrl.SetFields(in)
	h.submit(c, ctrl, capture, http.StatusOK)
}

func (h *CourseHandler) submit(c *gin.Context, ctrl *form.Controller, capture *render.Capture, status int) {
	stored, err := ctrl.Submit(c.Request.Context())
	if errors.Is(err, models.ErrTitleRequired) {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to save course")
		return
	}

	c.JSON(status, courseResponse{Course: stored, Notices: capture.Notices})
}

// DeleteCourse removes the course with the path id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	ctrl, capture := h.controller()

	removed, err := ctrl.RequestDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete course")
		return
	}
	if !removed {
		ErrorResponse(c, http.StatusNotFound, "Course not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notices": capture.Notices})
}

// CoursesPage renders the admin page. ?edit=<id> loads that course into the
// form.
func (h *CourseHandler) CoursesPage(c *gin.Context) {
	ctrl, capture := h.controller()

	if id := c.Query("edit"); id != "" {
		_ = ctrl.StartEdit(c.Request.Context(), id)
	}
	h.renderPage(c, ctrl, capture, http.StatusOK)
}

// SubmitPage handles the admin page form. A non-empty id edits that course
// in place; otherwise a new course is added. Success redirects back to the
// page, a rejected form is shown again with its notices.
func (h *CourseHandler) SubmitPage(c *gin.Context) {
	var in models.CourseInput
	if err := c.ShouldBind(&in); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	ctrl, capture := h.controller()

	if id := strings.TrimSpace(in.ID); id != "" {
		err := ctrl.StartEdit(ctx, id)
		if errors.Is(err, repository.ErrCourseNotFound) {
			h.renderPage(c, ctrl, capture, http.StatusNotFound)
			return
		}
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to load course")
			return
		}
	}

	ctrl.SetFields(in)
	_, err := ctrl.Submit(ctx)
	if errors.Is(err, models.ErrTitleRequired) {
		h.renderPage(c, ctrl, capture, http.StatusBadRequest)
		return
	}
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to save course")
		return
	}

	c.Redirect(http.StatusSeeOther, coursesPagePath)
}

// DeletePage handles a row's delete form. The page asks before posting.
func (h *CourseHandler) DeletePage(c *gin.Context) {
	ctrl, capture := h.controller()

	removed, err := ctrl.RequestDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete course")
		return
	}
	if !removed {
		h.renderPage(c, ctrl, capture, http.StatusNotFound)
		return
	}

	c.Redirect(http.StatusSeeOther, coursesPagePath)
}

func (h *CourseHandler) renderPage(c *gin.Context, ctrl *form.Controller, capture *render.Capture, status int) {
	ctx := c.Request.Context()
	if err := ctrl.RenderList(ctx); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load courses")
		return
	}

	theme, err := h.prefRepo.Theme(ctx)
	if err != nil {
		theme = models.DefaultTheme
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	err = render.WritePage(c.Writer, render.Page{
		Theme:   theme,
		State:   ctrl.State().String(),
		Fields:  ctrl.Fields(),
		Courses: capture.Courses,
		Notices: capture.Notices,
	})
	if err != nil {
		h.log.Error("failed to render courses page", "error", err)
	}
}

// Dashboard returns the catalog summary
func (h *CourseHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	courses, err := h.courseRepo.LoadAll(ctx)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load courses")
		return
	}
	users, err := h.userRepo.Count(ctx)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to count users")
		return
	}

	stats := models.DashboardStats{Courses: len(courses), Users: users}
	if ms, ok, err := h.courseRepo.LastUpdated(ctx); err == nil && ok {
		stats.LastUpdated = &ms
	}

	c.JSON(http.StatusOK, stats)
}
