package api

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"medeasy/admin/internal/client"
	"medeasy/admin/internal/export"
	"medeasy/admin/internal/page"
	"medeasy/admin/internal/seed"
)

const maxImportSize = 5 << 20

// pageRequest resolves the entity page and credential for r, writing a 404
// when the entity is unknown.
func (h *Handler) pageRequest(w http.ResponseWriter, r *http.Request) (page.Controller, client.Credential, *navData, bool) {
	sess := sessionFromContext(r)
	ws := h.workspace(sess.ID)
	p, ok := ws.Page(chi.URLParam(r, "entity"))
	if !ok {
		http.NotFound(w, r)
		return nil, client.Credential{}, nil, false
	}
	nav := &navData{Subject: sess.Subject, Current: p.Name()}
	for _, name := range ws.Names() {
		other, _ := ws.Page(name)
		nav.Items = append(nav.Items, navItem{Name: name, Title: other.Title()})
	}
	return p, sess.CredentialFor(r, sessionCookie), nav, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, cred, nav, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	if err := h.search(r, p, cred); err != nil && !errors.Is(err, page.ErrStale) {
		log.Printf("%s: %v", p.Name(), err)
	}
	h.renderPage(w, http.StatusOK, p, nav, nil)
}

// rows serves the table body for keystroke search. A response that was
// superseded by a newer search is answered with 204 so the browser keeps the
// newer table.
func (h *Handler) rows(w http.ResponseWriter, r *http.Request) {
	p, cred, _, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	err := h.search(r, p, cred)
	if errors.Is(err, page.ErrStale) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.render(w, http.StatusOK, "rows", pageData{View: p.View()})
}

// search runs the request's q term when present, otherwise re-runs the
// page's current term.
func (h *Handler) search(r *http.Request, p page.Controller, cred client.Credential) error {
	if q, ok := r.URL.Query()["q"]; ok {
		return p.Search(r.Context(), cred, q[0])
	}
	return p.Refresh(r.Context(), cred)
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request) {
	p, cred, nav, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	if err := p.OpenCreate(); err != nil {
		respondError(w, http.StatusMethodNotAllowed, "this page does not support creating records")
		return
	}
	if p.View().Phase == page.Idle {
		p.Load(r.Context(), cred)
	}
	h.renderPage(w, http.StatusOK, p, nav, nil)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	p, cred, nav, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	if !h.openEdit(r, p, cred, chi.URLParam(r, "id"), w) {
		return
	}
	h.renderPage(w, http.StatusOK, p, nav, nil)
}

// openEdit opens the edit form for id, loading the table first when the row
// is not in the current result set.
func (h *Handler) openEdit(r *http.Request, p page.Controller, cred client.Credential, id string, w http.ResponseWriter) bool {
	err := p.OpenEdit(id)
	if errors.Is(err, page.ErrNotFound) {
		if loadErr := p.Load(r.Context(), cred); loadErr == nil {
			err = p.OpenEdit(id)
		}
	}
	switch {
	case errors.Is(err, page.ErrUnsupported):
		respondError(w, http.StatusMethodNotAllowed, "this page does not support editing records")
		return false
	case errors.Is(err, page.ErrNotFound):
		http.NotFound(w, r)
		return false
	}
	return true
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	p, _, _, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	p.Cancel()
	h.redirectToList(w, r, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, cred, nav, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	if v := p.View(); v.Modal != page.Creating {
		if err := p.OpenCreate(); err != nil {
			respondError(w, http.StatusMethodNotAllowed, "this page does not support creating records")
			return
		}
	}
	h.submit(w, r, p, cred, nav)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, cred, nav, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if v := p.View(); v.Modal != page.Editing || v.EditID != id {
		if !h.openEdit(r, p, cred, id, w) {
			return
		}
	}
	h.submit(w, r, p, cred, nav)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, p page.Controller, cred client.Credential, nav *navData) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	values := make(map[string]string, len(p.Fields()))
	for _, f := range p.Fields() {
		values[f.Name] = r.PostFormValue(f.Name)
	}

	err := p.Submit(r.Context(), cred, values)
	var verr *page.ValidationError
	switch {
	case err == nil:
		h.redirectToList(w, r, p)
	case errors.As(err, &verr):
		h.renderPage(w, http.StatusUnprocessableEntity, p, nav, nil)
	case errors.Is(err, page.ErrBusy):
		h.renderPage(w, http.StatusConflict, p, nav, nil)
	default:
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) || apiErr.Status == 0 {
			log.Printf("%s: submit failed: %v", p.Name(), err)
		}
		h.renderPage(w, http.StatusOK, p, nav, nil)
	}
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	p, cred, nav, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	row, found := findRow(p.View(), id)
	if !found {
		p.Load(r.Context(), cred)
		row, found = findRow(p.View(), id)
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	h.render(w, http.StatusOK, "confirm", pageData{View: p.View(), Nav: nav, Confirm: &row})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, cred, _, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	confirmed := r.PostFormValue("confirm") == "yes"
	err := p.Delete(r.Context(), cred, chi.URLParam(r, "id"), confirmed)
	if errors.Is(err, page.ErrUnsupported) {
		respondError(w, http.StatusMethodNotAllowed, "this page does not support deleting records")
		return
	}
	h.redirectToList(w, r, p)
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	p, cred, _, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	if p.View().Phase == page.Idle {
		p.Load(r.Context(), cred)
	}
	v := p.View()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+v.Name+".xlsx")
	if err := export.WriteXLSX(w, v); err != nil {
		log.Printf("%s: export failed: %v", p.Name(), err)
	}
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	p, cred, nav, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	if !p.CanCreate() {
		respondError(w, http.StatusMethodNotAllowed, "this page does not support importing records")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "a csv file is required")
		return
	}
	defer file.Close()

	result, err := seed.LoadCSV(r.Context(), p, cred, file)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.Refresh(r.Context(), cred)
	h.renderPage(w, http.StatusOK, p, nav, &result)
}

func (h *Handler) redirectToList(w http.ResponseWriter, r *http.Request, p page.Controller) {
	target := "/" + p.Name()
	if term := p.View().Term; term != "" {
		target += "?q=" + url.QueryEscape(term)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func findRow(v page.View, id string) (page.Row, bool) {
	for _, row := range v.Rows {
		if row.ID == id {
			return row, true
		}
	}
	return page.Row{}, false
}
