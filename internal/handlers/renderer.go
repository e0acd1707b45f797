package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/liamwears/lbmovies/internal/browse"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*
var templatesFS embed.FS

// DefaultImageBaseURL serves w500 posters
const DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

// Renderer handles template rendering
type Renderer struct {
	pages  map[string]*template.Template
	logger logrus.FieldLogger
}

// NewRenderer parses every page together with the shared layout
func NewRenderer(imageBaseURL string, logger logrus.FieldLogger) (*Renderer, error) {
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	imageBaseURL = strings.TrimRight(imageBaseURL, "/")

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"toJSON": func(v any) template.JS {
			b, _ := json.Marshal(v)
			return template.JS(b)
		},
		"posterURL": func(path *string) string {
			if path == nil || *path == "" {
				return ""
			}
			return imageBaseURL + *path
		},
		"voteClass": voteClass,
		"kindLabel": kindLabel,
		"rating":    func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"pageRange": func(current, total int) []int { return browse.PageWindow(current, total, 7) },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	names, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, path := range names {
		name := strings.TrimPrefix(path, "templates/")
		if name == "layout.html" {
			continue
		}
		// Login page doesn't use layout, others do
		files := []string{"templates/layout.html", path}
		if name == "login.html" {
			files = files[1:]
		}
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{
		pages:  pages,
		logger: logger.WithField("component", "renderer"),
	}, nil
}

// voteClass picks the rating badge color
func voteClass(v float64) string {
	switch {
	case v >= 8:
		return "vote-high"
	case v >= 6:
		return "vote-mid"
	}
	return "vote-low"
}

// Render renders a template with data
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return tmpl.ExecuteTemplate(w, name, data)
}

// RenderPage renders a page template and handles errors. Output is buffered
// so a failing template never sends a half-written page.
func (r *Renderer) RenderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.WithField("template", name).WithError(err).Error("failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
