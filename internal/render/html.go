// Package render holds the presentation adapters for the course list: an
// HTML renderer for the admin page and a Markdown renderer for terminals.
package render

import (
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/learnhub/backend/internal/form"
	"github.com/learnhub/backend/internal/models"
)

// ImagePlaceholder replaces a thumbnail that is missing or fails to load.
const ImagePlaceholder = "https://via.placeholder.com/160x90?text=No+Image"

const emptyField = "-"

// Row is one rendered course
type Row struct {
	ID          string
	Title       string
	Description string
	Thumbnail   string
	Category    string
	Duration    string
	Level       string
}

func rowsFor(courses []models.Course) []Row {
	rows := make([]Row, 0, len(courses))
	for _, c := range courses {
		thumb := c.DisplayThumbnail()
		if thumb == "" {
			thumb = ImagePlaceholder
		}
		rows = append(rows, Row{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Thumbnail:   thumb,
			Category:    orDash(c.Category),
			Duration:    orDash(c.Duration),
			Level:       orDash(c.Level),
		})
	}
	return rows
}

func orDash(s string) string {
	if s == "" {
		return emptyField
	}
	return s
}

var funcs = template.FuncMap{
	"placeholder": func() string { return ImagePlaceholder },
}

var listTmpl = template.Must(template.New("list").Funcs(funcs).Parse(`
{{- define "notices" }}{{ range . }}<div class="notice notice-{{ .Level }}" role="status">{{ .Message }}</div>
{{ end }}{{ end -}}
{{- define "rows" -}}
{{ if . -}}
<ul class="course-list">
{{- range . }}
  <li class="course-row" data-id="{{ .ID }}">
    <img class="thumb" src="{{ .Thumbnail }}" alt="{{ .Title }}" data-fallback="{{ placeholder }}" onerror="this.onerror=null;this.src=this.dataset.fallback">
    <div class="info">
      <h3 class="title">{{ .Title }}</h3>
      <p class="description">{{ .Description }}</p>
      <p class="meta"><span class="category">{{ .Category }}</span> | <span class="duration">{{ .Duration }}</span> | <span class="level">{{ .Level }}</span></p>
    </div>
    <div class="actions">
      <a class="edit" data-action="edit" data-id="{{ .ID }}" href="/admin/courses?edit={{ .ID }}">Edit</a>
      <form class="delete-form" method="post" action="/admin/courses/{{ .ID }}/delete" onsubmit="return confirm('Delete this course?')">
        <button class="delete" data-action="delete" data-id="{{ .ID }}" type="submit">Delete</button>
      </form>
    </div>
  </li>
{{- end }}
</ul>
{{- else -}}
<p class="empty">No courses yet.</p>
{{- end }}
{{ end -}}
{{ template "notices" .Notices }}{{ template "rows" .Rows }}`))

var pageTmpl = template.Must(template.Must(listTmpl.Clone()).New("page").Parse(`<!DOCTYPE html>
<html lang="en" data-theme="{{ .Theme }}">
<head>
  <meta charset="utf-8">
  <title>Courses | LearnHub admin</title>
</head>
<body>
  <h1>Courses</h1>
  {{ template "notices" .Notices }}
  <form id="course-form" class="state-{{ .State }}" method="post" action="/admin/courses">
    <input type="hidden" name="id" value="{{ .Fields.ID }}">
    <input name="title" value="{{ .Fields.Title }}" required>
    <textarea name="description">{{ .Fields.Description }}</textarea>
    <input name="thumbnail" value="{{ .Fields.Thumbnail }}">
    <input name="video" value="{{ .Fields.Video }}">
    <input name="duration" value="{{ .Fields.Duration }}">
    <input name="level" value="{{ .Fields.Level }}">
    <input name="category" value="{{ .Fields.Category }}">
    <button type="submit">{{ if eq .State "editing" }}Save changes{{ else }}Add course{{ end }}</button>
  </form>
  {{ template "rows" .Rows }}
</body>
</html>
`))

type listData struct {
	Notices []form.Notice
	Rows    []Row
}

// Page is the full admin course page: the edit form and the list.
type Page struct {
	Theme   string
	State   string
	Fields  models.CourseInput
	Courses []models.Course
	Notices []form.Notice
}

// WritePage renders p as a complete HTML document
func WritePage(w io.Writer, p Page) error {
	if p.Theme == "" {
		p.Theme = models.DefaultTheme
	}
	data := struct {
		Page
		Rows []Row
	}{Page: p, Rows: rowsFor(p.Courses)}

	if err := pageTmpl.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// HTMLPresenter writes the list as an HTML fragment. Notices are buffered and
// written ahead of the next list.
type HTMLPresenter struct {
	w       io.Writer
	notices []form.Notice
}

func NewHTMLPresenter(w io.Writer) *HTMLPresenter {
	return &HTMLPresenter{w: w}
}

func (p *HTMLPresenter) RenderList(_ context.Context, courses []models.Course) error {
	data := listData{Notices: p.notices, Rows: rowsFor(courses)}
	p.notices = nil
	if err := listTmpl.Execute(p.w, data); err != nil {
		return fmt.Errorf("failed to render course list: %w", err)
	}
	return nil
}

func (p *HTMLPresenter) Notify(n form.Notice) {
	p.notices = append(p.notices, n)
}

// Capture keeps the last rendered list and every notice so a caller can
// render them once at the end of a request.
type Capture struct {
	Courses []models.Course
	Notices []form.Notice
}

func (c *Capture) RenderList(_ context.Context, courses []models.Course) error {
	c.Courses = courses
	return nil
}

func (c *Capture) Notify(n form.Notice) {
	c.Notices = append(c.Notices, n)
}
