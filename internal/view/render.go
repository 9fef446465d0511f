package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	PageLanding   = "landing"
	PageDashboard = "dashboard"
	PageWallet    = "wallet"
	PageTransfer  = "transfer"
	PageUsers     = "users"
)

// Page is the data every template receives. Data is page specific.
type Page struct {
	Username string
	Notice   string
	Error    string
	Data     any
}

// Renderer holds one parsed template set per page
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"pngDataURI": func(b64 string) template.URL {
		return template.URL("data:image/png;base64," + b64)
	},
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageLanding, PageDashboard, PageWallet, PageTransfer, PageUsers} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the page with status. The page is rendered to a buffer first so a template error
// never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
