package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/learnhub/backend/internal/form"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/obfuscate"
	"github.com/learnhub/backend/internal/render"
	"github.com/learnhub/backend/internal/repository"
	"github.com/learnhub/backend/internal/youtube"
	"gopkg.in/yaml.v3"
)

const usage = `Usage: coursectl <command> [flags]

Commands:
  list [-format markdown|html]   print the catalog
  add -title T [-video V ...]    add a course
  edit -id ID [-title T ...]     change the given fields of a course
  delete -id ID [-yes]           remove a course
  export [-blob]                 print the catalog as a YAML seed, or as the encrypted value
  import -file seed.yaml         add or replace the courses of a seed file
  import-blob -file blob.txt     replace the catalog with an encrypted value`

var (
	errUsage    = errors.New("invalid usage")
	errDeclined = errors.New("delete declined")
)

type app struct {
	courses *repository.CourseRepository
	codec   *obfuscate.Codec
	log     *logger.Logger
	in      io.Reader
	out     io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return a.list(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "export":
		return a.export(ctx, rest)
	case "import":
		return a.importSeed(ctx, rest)
	case "import-blob":
		return a.importBlob(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		fmt.Fprintln(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) controller(p form.Presenter, c form.Confirmer) *form.Controller {
	return form.NewController(a.courses, p, c, a.log)
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.newFlagSet("list")
	format := fs.String("format", "markdown", "output format: markdown or html")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var p form.Presenter
	switch *format {
	case "markdown", "md":
		p = render.NewMarkdownPresenter(a.out)
	case "html":
		p = render.NewHTMLPresenter(a.out)
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}
	return a.controller(p, form.AlwaysConfirm).RenderList(ctx)
}

// fieldFlags binds one flag per editable field into in
func fieldFlags(fs *flag.FlagSet, in *models.CourseInput) {
	fs.StringVar(&in.Title, "title", "", "course title")
	fs.StringVar(&in.Description, "description", "", "course description")
	fs.StringVar(&in.Thumbnail, "thumbnail", "", "thumbnail URL, derived from the video when empty")
	fs.StringVar(&in.Video, "video", "", "video id or URL")
	fs.StringVar(&in.Duration, "duration", "", "duration, free text")
	fs.StringVar(&in.Level, "level", "", "level, free text")
	fs.StringVar(&in.Category, "category", models.DefaultCategory, "category")
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	var in models.CourseInput
	fieldFlags(fs, &in)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := a.controller(render.NewMarkdownPresenter(a.out), form.AlwaysConfirm)
	c.SetFields(in)
	_, err := c.Submit(ctx)
	return err
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("edit")
	id := fs.String("id", "", "id of the course to edit")
	var in models.CourseInput
	fieldFlags(fs, &in)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", errUsage)
	}

	c := a.controller(render.NewMarkdownPresenter(a.out), form.AlwaysConfirm)
	if err := c.StartEdit(ctx, *id); err != nil {
		return err
	}

	fields := c.Fields()
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
		switch f.Name {
		case "title":
			fields.Title = in.Title
		case "description":
			fields.Description = in.Description
		case "thumbnail":
			fields.Thumbnail = in.Thumbnail
		case "video":
			fields.Video = in.Video
		case "duration":
			fields.Duration = in.Duration
		case "level":
			fields.Level = in.Level
		case "category":
			fields.Category = in.Category
		}
	})
	// a thumbnail derived from the old video is derived again from the new one
	oldVideo := c.Fields().Video
	if set["video"] && !set["thumbnail"] && fields.Thumbnail == youtube.ThumbnailURL(oldVideo) {
		fields.Thumbnail = ""
	}
	c.SetFields(fields)

	_, err := c.Submit(ctx)
	return err
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.newFlagSet("delete")
	id := fs.String("id", "", "id of the course to delete")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", errUsage)
	}

	confirmer := form.AlwaysConfirm
	declined := false
	if !*yes {
		confirmer = form.ConfirmFunc(func(_ context.Context, p form.Prompt) bool {
			ok := a.ask(fmt.Sprintf("%s (%s) [y/N] ", p.Message, p.CourseID))
			declined = !ok
			return ok
		})
	}

	removed, err := a.controller(render.NewMarkdownPresenter(a.out), confirmer).RequestDelete(ctx, *id)
	if err != nil {
		return err
	}
	if declined {
		return errDeclined
	}
	if !removed {
		return repository.ErrCourseNotFound
	}
	return nil
}

// ask writes question and reads one answer line from the input
func (a *app) ask(question string) bool {
	fmt.Fprint(a.out, question)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// seedCourse is one entry of a seed file. Video may be an id or a URL.
type seedCourse struct {
	ID          string `yaml:"id,omitempty"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Thumbnail   string `yaml:"thumbnail,omitempty"`
	Video       string `yaml:"video,omitempty"`
	Duration    string `yaml:"duration,omitempty"`
	Level       string `yaml:"level,omitempty"`
	Category    string `yaml:"category,omitempty"`
}

type seedFile struct {
	Courses []seedCourse `yaml:"courses"`
}

func (s seedCourse) input() models.CourseInput {
	return models.CourseInput{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Thumbnail:   s.Thumbnail,
		Video:       s.Video,
		Duration:    s.Duration,
		Level:       s.Level,
		Category:    s.Category,
	}
}

func seedFromCourse(c models.Course) seedCourse {
	return seedCourse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Thumbnail:   c.Thumbnail,
		Video:       c.VideoID,
		Duration:    c.Duration,
		Level:       c.Level,
		Category:    c.Category,
	}
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := a.newFlagSet("export")
	blob := fs.Bool("blob", false, "print the encrypted value instead of YAML")
	if err := fs.Parse(args); err != nil {
		return err
	}

	courses, err := a.courses.LoadAll(ctx)
	if err != nil {
		return err
	}

	if *blob {
		enc, err := a.codec.Encrypt(courses)
		if err != nil {
			return fmt.Errorf("failed to encrypt courses: %w", err)
		}
		_, err = fmt.Fprintln(a.out, enc)
		return err
	}

	seed := seedFile{Courses: make([]seedCourse, 0, len(courses))}
	for _, c := range courses {
		seed.Courses = append(seed.Courses, seedFromCourse(c))
	}

	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(seed); err != nil {
		return fmt.Errorf("failed to encode seed: %w", err)
	}
	return enc.Close()
}

// parseSeed decodes a seed file and checks every entry before anything is
// stored.
func parseSeed(r io.Reader) ([]models.Course, error) {
	var seed seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}

	courses := make([]models.Course, 0, len(seed.Courses))
	for i, s := range seed.Courses {
		c := s.input().ToCourse()
		if c.Title == "" {
			return nil, fmt.Errorf("seed entry %d: %w", i+1, models.ErrTitleRequired)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (a *app) importSeed(ctx context.Context, args []string) error {
	fs := a.newFlagSet("import")
	path := fs.String("file", "", "seed YAML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("%w: -file is required", errUsage)
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("failed to open seed: %w", err)
	}
	defer f.Close()

	courses, err := parseSeed(f)
	if err != nil {
		return err
	}

	added, replaced := 0, 0
	for _, c := range courses {
		_, created, err := a.courses.Upsert(ctx, c)
		if err != nil {
			return err
		}
		if created {
			added++
		} else {
			replaced++
		}
	}

	a.log.Info("seed imported", "file", *path, "added", added, "replaced", replaced)
	fmt.Fprintf(a.out, "imported %d courses (%d added, %d replaced)\n", len(courses), added, replaced)
	return nil
}

func (a *app) importBlob(ctx context.Context, args []string) error {
	fs := a.newFlagSet("import-blob")
	path := fs.String("file", "", "file holding the encrypted course list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("%w: -file is required", errUsage)
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		return fmt.Errorf("failed to read blob: %w", err)
	}

	var courses []models.Course
	if err := a.codec.Decrypt(strings.TrimSpace(string(raw)), &courses); err != nil {
		return fmt.Errorf("blob unreadable: %w", err)
	}

	stored, err := a.courses.ReplaceAll(ctx, courses)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "imported %d courses\n", len(stored))
	return nil
}
