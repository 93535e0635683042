package form

import (
	"context"

	"github.com/learnhub/backend/internal/models"
)

// Level classifies a notice
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient message for the user
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Prompt is the question put to a Confirmer before a delete
type Prompt struct {
	CourseID string
	Message  string
}

// Presenter draws the course list and shows notices.
type Presenter interface {
	RenderList(ctx context.Context, courses []models.Course) error
	Notify(n Notice)
}

// Confirmer answers yes/no prompts.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, p Prompt) bool

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) bool {
	return f(ctx, p)
}

// AlwaysConfirm accepts every prompt. It backs non-interactive callers such
// as the HTTP API, where the client has already asked.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, Prompt) bool { return true })
