// Package views renders the server-side HTML pages.
//
// Every page under templates/ is parsed together with the shared layout
// (templates/layout) into its own template set, so pages can each define
// "title" and "content" without clashing. Pages are looked up by their path
// relative to templates/, e.g. "posts/index.html".
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates
var templateFS embed.FS

const layoutDir = "layout"

// Data is the context a page template is executed with.
type Data map[string]interface{}

// ImageURLer resolves a stored image key to the URL it is served from.
type ImageURLer interface {
	URL(key string) string
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages  map[string]*template.Template
	images ImageURLer
}

// NewRenderer parses all embedded pages. images may be nil, in which case
// image keys are emitted unchanged.
func NewRenderer(images ImageURLer) (*Renderer, error) {
	r := &Renderer{
		pages:  make(map[string]*template.Template),
		images: images,
	}

	root, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	layout, err := template.New("").Funcs(r.funcMap()).ParseFS(root, layoutDir+"/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	err = fs.WalkDir(root, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name == layoutDir {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(name) != ".html" {
			return nil
		}

		set, err := layout.Clone()
		if err != nil {
			return err
		}
		if _, err := set.ParseFS(root, name); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = set
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Has reports whether a page is known.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render executes the layout of page name. The page is rendered into a
// buffer first so a failing template never leaves a half written body.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	set, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("views: unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("views: render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) funcMap() template.FuncMap {
	return template.FuncMap{
		"imageURL": func(key string) string {
			if r.images == nil || key == "" {
				return key
			}
			return r.images.URL(key)
		},
		"date": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
		"linebreaksbr":  linebreaksbr,
		"truncatechars": truncateChars,
	}
}

// linebreaksbr escapes s and turns newlines into <br>.
func linebreaksbr(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
}

func truncateChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n < 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
