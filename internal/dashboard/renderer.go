package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names.
const (
	PageList   = "list"
	PageDetail = "detail"
	PageNew    = "new"
	PageError  = "error"
)

// Renderer renders dashboard pages from embedded templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"severityBadge": SeverityBadge,
		"statusBadge":   StatusBadge,
	}

	r := &Renderer{templates: make(map[string]*template.Template)}

	for _, page := range []string{PageList, PageDetail, PageNew, PageError} {
		filename := fmt.Sprintf("templates/%s.html", page)

		tmpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templatesFS, "templates/layout.html", filename)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", filename, err)
		}

		r.templates[page] = tmpl
	}

	return r, nil
}

// Render executes the named page with data.
func (r *Renderer) Render(page string, data any) ([]byte, error) {
	tmpl, ok := r.templates[page]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", page, err)
	}

	return buf.Bytes(), nil
}
