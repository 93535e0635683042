package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/learnhub/backend/internal/form"
	"github.com/learnhub/backend/internal/models"
)

var mdTmpl = template.Must(template.New("md").Parse(`
{{- range . -}}
<h3>{{ .Title }}</h3>
<p><code>{{ .ID }}</code></p>
{{ if .Description }}<p>{{ .Description }}</p>{{ end }}
<p><em>{{ .Category }} / {{ .Duration }} / {{ .Level }}</em></p>
<p><img src="{{ .Thumbnail }}" alt="thumbnail"></p>
{{ else -}}
<p><em>No courses yet.</em></p>
{{- end }}`))

// MarkdownPresenter writes the list as Markdown, for terminals and for
// pasting into notes. Notices are written immediately as quotes.
type MarkdownPresenter struct {
	w         io.Writer
	converter *md.Converter
}

func NewMarkdownPresenter(w io.Writer) *MarkdownPresenter {
	return &MarkdownPresenter{w: w, converter: md.NewConverter("", true, nil)}
}

func (p *MarkdownPresenter) RenderList(_ context.Context, courses []models.Course) error {
	var buf bytes.Buffer
	if err := mdTmpl.Execute(&buf, rowsFor(courses)); err != nil {
		return fmt.Errorf("failed to render course list: %w", err)
	}

	out, err := p.converter.ConvertString(buf.String())
	if err != nil {
		return fmt.Errorf("failed to convert course list: %w", err)
	}

	_, err = fmt.Fprintf(p.w, "## Courses (%d)\n\n%s\n", len(courses), strings.TrimSpace(out))
	return err
}

func (p *MarkdownPresenter) Notify(n form.Notice) {
	fmt.Fprintf(p.w, "> **%s**: %s\n\n", n.Level, n.Message)
}
