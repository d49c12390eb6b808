package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/couchcryptid/task-trek/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"temp": func(c float64) string { return strconv.FormatFloat(c, 'f', -1, 64) },
}

// pages holds one template set per page, each combined with the layout.
type pages map[string]*template.Template

func loadPages(names ...string) (pages, error) {
	out := make(pages, len(names))
	for _, name := range names {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// pageData is shared by every page. Fields a page does not use stay zero.
type pageData struct {
	Title  string
	Theme  domain.Theme
	Tokens domain.StyleTokens
	Email  string

	Form              signInForm
	MinPasswordLength int

	City    string
	Weather domain.WeatherResult
}

type signInForm struct {
	Email      string
	Validation domain.Validation
	Error      string
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render page failed", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
