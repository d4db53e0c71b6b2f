package api

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"medeasy/admin/internal/entities"
	"medeasy/admin/internal/page"
	"medeasy/admin/internal/session"
)

type ctxKey string

const (
	ctxSession ctxKey = "session"

	sessionCookie = "medeasy_session"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	sessions  *session.Store
	api       page.API
	opts      page.Options
	origins   []string
	templates *template.Template

	mu         sync.Mutex
	workspaces map[string]*workspaceEntry
}

type workspaceEntry struct {
	ws       *entities.Workspace
	lastSeen time.Time
}

// idleWorkspace is how long an unused workspace is kept in memory.
const idleWorkspace = 12 * time.Hour

// New constructs a Handler.
func New(sessions *session.Store, api page.API, opts page.Options, allowedOrigins []string) *Handler {
	return &Handler{
		sessions:   sessions,
		api:        api,
		opts:       opts,
		origins:    allowedOrigins,
		templates:  parseTemplates(),
		workspaces: make(map[string]*workspaceEntry),
	}
}

// Router wires up the console.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.sessionForm)
		r.Post("/", h.createSession)
		r.Post("/logout", h.logout)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/customers", http.StatusSeeOther)
		})

		pr.Route("/{entity}", func(r chi.Router) {
			r.Get("/", h.list)
			r.Get("/rows", h.rows)
			r.Get("/export.xlsx", h.exportXLSX)
			r.Post("/import", h.importCSV)
			r.Get("/new", h.newForm)
			r.Post("/cancel", h.cancel)
			r.Post("/", h.create)
			r.Get("/{id}/edit", h.editForm)
			r.Post("/{id}", h.update)
			r.Get("/{id}/delete", h.confirmDelete)
			r.Post("/{id}/delete", h.delete)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Session handlers

func (h *Handler) sessionForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "session", sessionData{})
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "session", sessionData{Error: "invalid form"})
		return
	}
	sess, err := h.sessions.Create(r.Context(), r.PostFormValue("token"))
	switch {
	case errors.Is(err, session.ErrNoToken):
		h.render(w, http.StatusBadRequest, "session", sessionData{Error: "Token is required"})
		return
	case errors.Is(err, session.ErrExpired):
		h.render(w, http.StatusUnauthorized, "session", sessionData{Error: "Token has expired"})
		return
	case err != nil:
		log.Printf("create session: %v", err)
		h.render(w, http.StatusInternalServerError, "session", sessionData{Error: "Unable to start session"})
		return
	}

	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	}
	if !sess.ExpiresAt.IsZero() {
		cookie.Expires = sess.ExpiresAt
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, r, "/customers", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), c.Value); err != nil {
			log.Printf("logout: %v", err)
		}
		h.forget(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	http.Redirect(w, r, "/session", http.StatusSeeOther)
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			http.Redirect(w, r, "/session", http.StatusSeeOther)
			return
		}
		sess, err := h.sessions.Get(r.Context(), c.Value)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) {
				log.Printf("load session: %v", err)
			}
			h.forget(c.Value)
			http.Redirect(w, r, "/session", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), ctxSession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(r *http.Request) session.Session {
	sess, _ := r.Context().Value(ctxSession).(session.Session)
	return sess
}

// workspace returns the pages owned by the session, creating them on first use.
func (h *Handler) workspace(id string) *entities.Workspace {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.workspaces[id]
	if !ok {
		entry = &workspaceEntry{ws: entities.NewWorkspace(h.api, h.opts)}
		h.workspaces[id] = entry
	}
	entry.lastSeen = time.Now()
	return entry.ws
}

func (h *Handler) evictIdle(now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, entry := range h.workspaces {
		if now.Sub(entry.lastSeen) > idleWorkspace {
			delete(h.workspaces, id)
			n++
		}
	}
	return n
}

func (h *Handler) forget(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.workspaces, id)
}

// PurgeLoop drops expired sessions and idle workspaces every interval until
// ctx is done.
func (h *Handler) PurgeLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.evictIdle(now)
			n, err := h.sessions.Purge(ctx)
			if err != nil {
				log.Printf("purge sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("purged %d expired sessions", n)
			}
		}
	}
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
