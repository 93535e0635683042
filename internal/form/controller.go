// Package form binds one editable course to a set of form fields and keeps a
// rendered list of the catalog in step with the repository.
//
// The Controller owns no rendering surface. A Presenter draws the list and
// shows notices; a Confirmer answers the delete prompt. Both are injected, so
// the same controller drives the HTML admin page, the CLI and the tests.
package form

import (
	"context"
	"errors"
	"strings"

	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repository"
)

// State of a form instance.
type State int

const (
	StateEmpty State = iota
	StateEditing
)

func (s State) String() string {
	if s == StateEditing {
		return "editing"
	}
	return "empty"
}

// Notice messages
const (
	MsgLoaded       = "course loaded for editing"
	MsgNotFound     = "course not found"
	MsgTitleMissing = "title is required"
	MsgAdded        = "course added"
	MsgEdited       = "course edited"
	MsgDeleted      = "course deleted"
	MsgCleared      = "form cleared"
)

// CourseStore is the part of the course repository the controller needs.
type CourseStore interface {
	LoadAll(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Upsert(ctx context.Context, c models.Course) (models.Course, bool, error)
	Remove(ctx context.Context, id string) (bool, error)
}

type Controller struct {
	courses   CourseStore
	presenter Presenter
	confirmer Confirmer
	log       *logger.Logger

	fields models.CourseInput
	state  State
}

func NewController(courses CourseStore, presenter Presenter, confirmer Confirmer, log *logger.Logger) *Controller {
	c := &Controller{
		courses:   courses,
		presenter: presenter,
		confirmer: confirmer,
		log:       log.With("service", "FormController"),
	}
	c.Clear()
	return c
}

// State reports whether a course id is loaded
func (c *Controller) State() State {
	return c.state
}

// Fields returns the current field values
func (c *Controller) Fields() models.CourseInput {
	return c.fields
}

// SetFields replaces the editable fields. The loaded id is kept: typing into
// the form never changes which record a submit targets.
func (c *Controller) SetFields(in models.CourseInput) {
	in.ID = c.fields.ID
	c.fields = in
}

// RenderList loads every course and hands the list to the presenter
func (c *Controller) RenderList(ctx context.Context) error {
	courses, err := c.courses.LoadAll(ctx)
	if err != nil {
		c.notifyError(err)
		return err
	}
	return c.presenter.RenderList(ctx, courses)
}

// StartEdit copies the course with id into the fields. An unknown id leaves
// the fields untouched and returns repository.ErrCourseNotFound.
func (c *Controller) StartEdit(ctx context.Context, id string) error {
	course, err := c.courses.Get(ctx, id)
	if errors.Is(err, repository.ErrCourseNotFound) {
		c.presenter.Notify(Notice{Level: LevelError, Message: MsgNotFound})
		return err
	}
	if err != nil {
		c.notifyError(err)
		return err
	}

	c.fields = models.InputFromCourse(*course)
	c.state = StateEditing
	c.presenter.Notify(Notice{Level: LevelInfo, Message: MsgLoaded})
	return nil
}

// RequestDelete asks for confirmation and removes the course with id. It
// reports whether a course was removed; a declined prompt is not an error.
func (c *Controller) RequestDelete(ctx context.Context, id string) (bool, error) {
	if !c.confirmer.Confirm(ctx, Prompt{CourseID: id, Message: "Delete this course?"}) {
		return false, nil
	}

	removed, err := c.courses.Remove(ctx, id)
	if err != nil {
		c.notifyError(err)
		return false, err
	}
	if !removed {
		c.presenter.Notify(Notice{Level: LevelError, Message: MsgNotFound})
		return false, nil
	}

	if err := c.RenderList(ctx); err != nil {
		return true, err
	}
	c.presenter.Notify(Notice{Level: LevelSuccess, Message: MsgDeleted})
	return true, nil
}

// Submit stores the current fields as a course. A blank title aborts with
// models.ErrTitleRequired and changes nothing. On success the form is
// cleared and the list re-rendered.
func (c *Controller) Submit(ctx context.Context) (models.Course, error) {
	if strings.TrimSpace(c.fields.Title) == "" {
		c.presenter.Notify(Notice{Level: LevelError, Message: MsgTitleMissing})
		return models.Course{}, models.ErrTitleRequired
	}

	editing := c.fields.ID != ""
	stored, _, err := c.courses.Upsert(ctx, c.fields.ToCourse())
	if err != nil {
		c.notifyError(err)
		return models.Course{}, err
	}

	c.Clear()
	if err := c.RenderList(ctx); err != nil {
		return stored, err
	}

	msg := MsgAdded
	if editing {
		msg = MsgEdited
	}
	c.presenter.Notify(Notice{Level: LevelSuccess, Message: msg})
	return stored, nil
}

// Clear empties every field and resets the category
func (c *Controller) Clear() {
	c.fields = models.CourseInput{Category: models.DefaultCategory}
	c.state = StateEmpty
}

// Reset is Clear with a notice, as triggered by the clear button
func (c *Controller) Reset() {
	c.Clear()
	c.presenter.Notify(Notice{Level: LevelInfo, Message: MsgCleared})
}

func (c *Controller) notifyError(err error) {
	c.log.Error("course operation failed", "error", err)
	c.presenter.Notify(Notice{Level: LevelError, Message: err.Error()})
}
