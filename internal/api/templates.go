package api

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"medeasy/admin/internal/page"
	"medeasy/admin/internal/seed"
)

//go:embed templates/*.html
var templateFS embed.FS

type navItem struct {
	Name  string
	Title string
}

type navData struct {
	Subject string
	Current string
	Items   []navItem
}

type pageData struct {
	View    page.View
	Nav     *navData
	Import  *seed.Result
	Confirm *page.Row
}

type sessionData struct {
	Error string
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, p page.Controller, nav *navData, result *seed.Result) {
	h.render(w, status, "page", pageData{View: p.View(), Nav: nav, Import: result})
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}
