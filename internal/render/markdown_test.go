package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/learnhub/backend/internal/form"
	"github.com/learnhub/backend/internal/models"
)

func TestMarkdownPresenter_RenderList(t *testing.T) {
	var buf bytes.Buffer
	p := NewMarkdownPresenter(&buf)

	err := p.RenderList(context.Background(), []models.Course{
		{ID: "c_1", Title: "Intro", Description: "start here", VideoID: "dQw4w9WgXcQ", Category: "featured"},
	})
	if err != nil {
		t.Fatalf("RenderList error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"## Courses (1)",
		"### Intro",
		"`c_1`",
		"start here",
		"featured",
		"https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<h3>") {
		t.Error("Expected HTML to be converted")
	}
}

func TestMarkdownPresenter_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewMarkdownPresenter(&buf)

	if err := p.RenderList(context.Background(), nil); err != nil {
		t.Fatalf("RenderList error: %v", err)
	}
	if !strings.Contains(buf.String(), "No courses yet.") {
		t.Errorf("Expected empty state, got %q", buf.String())
	}
}

func TestMarkdownPresenter_Notify(t *testing.T) {
	var buf bytes.Buffer
	NewMarkdownPresenter(&buf).Notify(form.Notice{Level: form.LevelError, Message: "course not found"})

	if got := buf.String(); got != "> **error**: course not found\n\n" {
		t.Errorf("unexpected notice %q", got)
	}
}
