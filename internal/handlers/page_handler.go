package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
)

// PageHandler renders the embedded HTML pages
type PageHandler struct {
	logger    arbor.ILogger
	templates map[string]*template.Template
	static    http.Handler
}

// NewPageHandler parses every page in fsys together with the shared partials.
// fsys must contain *.html pages, partials/*.html and static/.
func NewPageHandler(logger arbor.ILogger, fsys fs.FS) (*PageHandler, error) {
	pages, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).
			Funcs(templateFuncs()).
			ParseFS(fsys, "partials/*.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	static, err := fs.Sub(fsys, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static files: %w", err)
	}

	logger.Debug().Int("pages", len(templates)).Msg("Page templates loaded")

	return &PageHandler{
		logger:    logger,
		templates: templates,
		static:    http.StripPrefix("/static/", http.FileServerFS(static)),
	}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"price": func(v *float64) string {
			if v == nil {
				return "-"
			}
			return humanize.CommafWithDigits(*v, 2)
		},
		"ago": func(t time.Time) string {
			return humanize.Time(t)
		},
		"date": func(t time.Time) string {
			return t.Local().Format("2006-01-02 15:04")
		},
		"orNA": func(s *string) string {
			if s == nil {
				return "N/A"
			}
			return *s
		},
	}
}

// Render executes a page with the common layout data merged into data.
// Rendering is buffered so a template error still produces a clean 500.
func (h *PageHandler) Render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]interface{}) {
	tmpl, ok := h.templates[page]
	if !ok {
		h.logger.Error().Str("template", page).Msg("Unknown page template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	data["Page"] = path.Base(page[:len(page)-len(path.Ext(page))])
	data["User"] = UserFromContext(r.Context())
	data["Flashes"] = takeFlashes(w, r)
	data["Version"] = common.GetVersion()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		h.logger.Error().
			Err(err).
			Str("template", page).
			Msg("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// StaticFileHandler serves embedded static files (CSS)
func (h *PageHandler) StaticFileHandler(w http.ResponseWriter, r *http.Request) {
	h.static.ServeHTTP(w, r)
}
