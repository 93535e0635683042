package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/obfuscate"
	"github.com/learnhub/backend/internal/repository"
	"github.com/learnhub/backend/internal/storage"
)

const testKey = "EducationalSite2025!@#"

func newTestApp(t *testing.T, input string) (*app, *bytes.Buffer) {
	t.Helper()
	codec := obfuscate.NewCodec(testKey)
	out := &bytes.Buffer{}
	return &app{
		courses: repository.NewCourseRepository(storage.NewMemoryStore(), codec, logger.Nop()),
		codec:   codec,
		log:     logger.Nop(),
		in:      strings.NewReader(input),
		out:     out,
	}, out
}

func seedApp(t *testing.T, a *app, courses ...models.Course) {
	t.Helper()
	if err := a.courses.SaveAll(context.Background(), courses); err != nil {
		t.Fatalf("Failed to seed courses: %v", err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestRun_UnknownCommand(t *testing.T) {
	a, out := newTestApp(t, "")

	err := a.run(context.Background(), []string{"frobnicate"})
	if !errors.Is(err, errUsage) {
		t.Fatalf("Expected errUsage, got %v", err)
	}
	if !strings.Contains(out.String(), "Usage: coursectl") {
		t.Error("Expected usage text")
	}
}

func TestRun_AddThenList(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t, "")

	err := a.run(ctx, []string{"add", "-title", "Go Basics", "-video", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	courses, _ := a.courses.LoadAll(ctx)
	if len(courses) != 1 {
		t.Fatalf("Expected 1 course, got %d", len(courses))
	}
	c := courses[0]
	if c.Title != "Go Basics" || c.VideoID != "dQw4w9WgXcQ" || c.Category != models.DefaultCategory {
		t.Errorf("Unexpected course %+v", c)
	}
	if !strings.HasPrefix(c.ID, "c_") {
		t.Errorf("Expected generated id, got %q", c.ID)
	}

	out.Reset()
	if err := a.run(ctx, []string{"list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "## Courses (1)") || !strings.Contains(out.String(), "Go Basics") {
		t.Errorf("Unexpected markdown list:\n%s", out.String())
	}

	out.Reset()
	if err := a.run(ctx, []string{"list", "-format", "html"}); err != nil {
		t.Fatalf("list html: %v", err)
	}
	if !strings.Contains(out.String(), `data-id="`+c.ID+`"`) {
		t.Errorf("Expected html row for %s:\n%s", c.ID, out.String())
	}
}

func TestRun_AddWithoutTitle(t *testing.T) {
	a, _ := newTestApp(t, "")

	err := a.run(context.Background(), []string{"add", "-video", "dQw4w9WgXcQ"})
	if !errors.Is(err, models.ErrTitleRequired) {
		t.Fatalf("Expected ErrTitleRequired, got %v", err)
	}
	courses, _ := a.courses.LoadAll(context.Background())
	if len(courses) != 0 {
		t.Errorf("Expected nothing stored, got %d", len(courses))
	}
}

func TestRun_ListUnknownFormat(t *testing.T) {
	a, _ := newTestApp(t, "")

	if err := a.run(context.Background(), []string{"list", "-format", "pdf"}); !errors.Is(err, errUsage) {
		t.Fatalf("Expected errUsage, got %v", err)
	}
}

func TestRun_EditChangesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, "")
	seedApp(t, a, models.Course{ID: "c_1", Title: "Intro", Description: "first", Level: "beginner", Category: "featured"})

	if err := a.run(ctx, []string{"edit", "-id", "c_1", "-title", "Intro to Go"}); err != nil {
		t.Fatalf("edit: %v", err)
	}

	c, err := a.courses.Get(ctx, "c_1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Title != "Intro to Go" {
		t.Errorf("Expected new title, got %q", c.Title)
	}
	if c.Description != "first" || c.Level != "beginner" {
		t.Errorf("Expected untouched fields kept, got %+v", c)
	}
}

func TestRun_EditUnknownID(t *testing.T) {
	a, _ := newTestApp(t, "")

	err := a.run(context.Background(), []string{"edit", "-id", "c_missing", "-title", "x"})
	if !errors.Is(err, repository.ErrCourseNotFound) {
		t.Fatalf("Expected ErrCourseNotFound, got %v", err)
	}
}

func TestRun_Delete(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		args    []string
		wantErr error
		left    int
	}{
		{"confirmed", "y\n", []string{"delete", "-id", "c_1"}, nil, 0},
		{"declined", "n\n", []string{"delete", "-id", "c_1"}, errDeclined, 1},
		{"no answer", "", []string{"delete", "-id", "c_1"}, errDeclined, 1},
		{"yes flag", "", []string{"delete", "-id", "c_1", "-yes"}, nil, 0},
		{"unknown id", "", []string{"delete", "-id", "c_9", "-yes"}, repository.ErrCourseNotFound, 1},
		{"missing id", "", []string{"delete"}, errUsage, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			a, _ := newTestApp(t, tt.input)
			seedApp(t, a, models.Course{ID: "c_1", Title: "Intro"})

			err := a.run(ctx, tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			courses, _ := a.courses.LoadAll(ctx)
			if len(courses) != tt.left {
				t.Errorf("Expected %d courses left, got %d", tt.left, len(courses))
			}
		})
	}
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    int
		wantErr bool
	}{
		{"empty file", "", 0, false},
		{"two courses", "courses:\n  - title: A\n    video: dQw4w9WgXcQ\n  - title: B\n    category: backend\n", 2, false},
		{"missing title", "courses:\n  - video: dQw4w9WgXcQ\n", 0, true},
		{"unknown field", "courses:\n  - title: A\n    author: me\n", 0, true},
		{"not yaml", "courses: [", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := parseSeed(strings.NewReader(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if len(courses) != tt.want {
				t.Errorf("Expected %d courses, got %d", tt.want, len(courses))
			}
		})
	}
}

func TestRun_ImportSeed(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t, "")
	seedApp(t, a, models.Course{ID: "c_1", Title: "Old"})

	path := writeFile(t, "seed.yaml", `courses:
  - id: c_1
    title: Replaced
  - title: New one
    video: https://youtu.be/dQw4w9WgXcQ
`)

	if err := a.run(ctx, []string{"import", "-file", path}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "1 added, 1 replaced") {
		t.Errorf("Unexpected summary %q", out.String())
	}

	courses, _ := a.courses.LoadAll(ctx)
	if len(courses) != 2 {
		t.Fatalf("Expected 2 courses, got %d", len(courses))
	}
	if courses[0].ID != "c_1" || courses[0].Title != "Replaced" {
		t.Errorf("Expected c_1 replaced in place, got %+v", courses[0])
	}
	if courses[1].VideoID != "dQw4w9WgXcQ" || courses[1].Thumbnail != "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg" {
		t.Errorf("Expected derived video fields, got %+v", courses[1])
	}
}

func TestRun_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, out := newTestApp(t, "")
	want := []models.Course{
		{ID: "c_1", Title: "Intro", VideoID: "dQw4w9WgXcQ", Thumbnail: "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", Category: "featured"},
		{ID: "c_2", Title: "Go", Description: "basics", Duration: "1h", Level: "beginner", Category: "backend"},
	}
	seedApp(t, src, want...)

	if err := src.run(ctx, []string{"export"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	path := writeFile(t, "seed.yaml", out.String())

	dst, _ := newTestApp(t, "")
	if err := dst.run(ctx, []string{"import", "-file", path}); err != nil {
		t.Fatalf("import: %v", err)
	}

	got, _ := dst.courses.LoadAll(ctx)
	if len(got) != len(want) {
		t.Fatalf("Expected %d courses, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("course %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestRun_ImportBlob(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, "")
	seedApp(t, a, models.Course{ID: "c_old", Title: "Old"})

	blob, err := a.codec.Encrypt([]models.Course{{ID: "c_1", Title: "From browser"}})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	path := writeFile(t, "blob.txt", blob+"\n")

	if err := a.run(ctx, []string{"import-blob", "-file", path}); err != nil {
		t.Fatalf("import-blob: %v", err)
	}

	courses, _ := a.courses.LoadAll(ctx)
	if len(courses) != 1 || courses[0].ID != "c_1" {
		t.Errorf("Expected catalog replaced by blob, got %+v", courses)
	}
}

func TestRun_ImportBlobCorrupt(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, "")
	seedApp(t, a, models.Course{ID: "c_old", Title: "Old"})

	path := writeFile(t, "blob.txt", "not a blob")
	if err := a.run(ctx, []string{"import-blob", "-file", path}); err == nil {
		t.Fatal("Expected error for corrupt blob")
	}

	courses, _ := a.courses.LoadAll(ctx)
	if len(courses) != 1 || courses[0].ID != "c_old" {
		t.Errorf("Expected catalog untouched, got %+v", courses)
	}
}

func TestRun_ExportBlob(t *testing.T) {
	ctx := context.Background()
	a, out := newTestApp(t, "")
	seedApp(t, a, models.Course{ID: "c_1", Title: "Intro"})

	if err := a.run(ctx, []string{"export", "-blob"}); err != nil {
		t.Fatalf("export: %v", err)
	}

	var got []models.Course
	if err := a.codec.Decrypt(strings.TrimSpace(out.String()), &got); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c_1" {
		t.Errorf("Unexpected blob contents %+v", got)
	}
}

func TestRun_ImportBlobNormalizes(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, "")

	blob, err := a.codec.Encrypt([]models.Course{
		{ID: "c_1", Title: "Kept", VideoID: "dQw4w9WgXcQ"},
		{ID: "", Title: "No id"},
		{ID: "c_3", Title: "Bad video", VideoID: "not-a-video-id"},
	})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	path := writeFile(t, "blob.txt", blob)

	if err := a.run(ctx, []string{"import-blob", "-file", path}); err != nil {
		t.Fatalf("import-blob: %v", err)
	}

	courses, _ := a.courses.LoadAll(ctx)
	if len(courses) != 3 {
		t.Fatalf("Expected 3 courses, got %d", len(courses))
	}
	if courses[0].VideoID != "dQw4w9WgXcQ" {
		t.Errorf("Expected valid video id kept, got %q", courses[0].VideoID)
	}
	if !strings.HasPrefix(courses[1].ID, "c_") {
		t.Errorf("Expected generated id, got %q", courses[1].ID)
	}
	if courses[2].VideoID != "" {
		t.Errorf("Expected invalid video id dropped, got %q", courses[2].VideoID)
	}
}

func TestRun_ImportBlobRejected(t *testing.T) {
	tests := []struct {
		name    string
		courses []models.Course
		wantErr error
	}{
		{"duplicate ids", []models.Course{{ID: "c_1", Title: "A"}, {ID: "c_1", Title: "B"}}, repository.ErrDuplicateID},
		{"blank title", []models.Course{{ID: "c_1", Title: "A"}, {ID: "c_2", Title: " "}}, models.ErrTitleRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			a, _ := newTestApp(t, "")
			seedApp(t, a, models.Course{ID: "c_old", Title: "Old"})

			blob, err := a.codec.Encrypt(tt.courses)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			path := writeFile(t, "blob.txt", blob)

			if err := a.run(ctx, []string{"import-blob", "-file", path}); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			courses, _ := a.courses.LoadAll(ctx)
			if len(courses) != 1 || courses[0].ID != "c_old" {
				t.Errorf("Expected catalog untouched, got %+v", courses)
			}
		})
	}
}

func TestRun_EditVideoRederivesThumbnail(t *testing.T) {
	tests := []struct {
		name      string
		thumbnail string
		want      string
	}{
		{"derived thumbnail follows video", "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", "https://i.ytimg.com/vi/9bZkp7q19f0/maxresdefault.jpg"},
		{"custom thumbnail kept", "https://cdn.example.com/intro.png", "https://cdn.example.com/intro.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			a, _ := newTestApp(t, "")
			seedApp(t, a, models.Course{ID: "c_1", Title: "Intro", VideoID: "dQw4w9WgXcQ", Thumbnail: tt.thumbnail, Category: "featured"})

			if err := a.run(ctx, []string{"edit", "-id", "c_1", "-video", "9bZkp7q19f0"}); err != nil {
				t.Fatalf("edit: %v", err)
			}

			c, _ := a.courses.Get(ctx, "c_1")
			if c.VideoID != "9bZkp7q19f0" {
				t.Errorf("Expected new video id, got %q", c.VideoID)
			}
			if c.Thumbnail != tt.want {
				t.Errorf("Expected thumbnail %q, got %q", tt.want, c.Thumbnail)
			}
		})
	}
}
