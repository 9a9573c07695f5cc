package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/desertthunder/toplist/internal/shared"
)

//go:embed templates/*.html
var templateFiles embed.FS

const baseTemplate = "base.html"

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"initial": func(s string) string {
		s = strings.TrimSpace(s)
		r, _ := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return "?"
		}
		return string(unicode.ToUpper(r))
	},
}

// Renderer executes the embedded page templates. Every page is parsed together with
// base.html and rendered through its "base" template.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template. A parse error means the binary is broken.
func NewRenderer() (*Renderer, error) {
	return newRenderer(templateFiles)
}

func newRenderer(fsys fs.FS) (*Renderer, error) {
	names, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, path := range names {
		name := strings.TrimPrefix(path, "templates/")
		if name == baseTemplate {
			continue
		}

		tmpl, err := template.New(name).Funcs(funcs).ParseFS(fsys, "templates/"+baseTemplate, path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Render writes the named page with a 200 status. Output is buffered so a failing
// template never sends a partial page.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrTemplateNotFound, name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
