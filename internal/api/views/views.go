// Package views holds the embedded HTML templates of the web front-end.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"

	"inari-web/internal/models"
)

//go:embed templates
var files embed.FS

const layout = "templates/layout.html"

var partials = []string{layout, "templates/media_card.html"}

// Renderer serves one template set per page, each sharing the layout
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// Load parses every page template against the layout
func Load(loc *time.Location) (*Renderer, error) {
	funcs := Funcs(loc)

	pages, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(files, append(partials, page)...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Instance implements render.HTMLRender
func (r *Renderer) Instance(name string, data interface{}) render.Render {
	return render.HTML{
		Template: r.pages[name],
		Name:     "layout",
		Data:     data,
	}
}

// Funcs are the helpers available to every template
func Funcs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"displayDate": func(m models.Media) string {
			taken := m.Taken()
			if taken.IsZero() {
				return ""
			}
			return models.FormatDisplayDate(taken.In(loc))
		},
		"location":  models.FormatLocation,
		"thumbnail": models.ThumbnailURL,
		"typeLabel": func(t models.CollectionType) string { return t.Label() },
	}
}
