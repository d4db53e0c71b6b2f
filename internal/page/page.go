// Package page implements the list, search and edit lifecycle shared by every
// entity screen of the console.
package page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"medeasy/admin/domain"
	"medeasy/admin/internal/client"
)

var (
	ErrNotConfirmed = errors.New("delete was not confirmed")
	ErrStale        = errors.New("response superseded by a newer search")
	ErrUnsupported  = errors.New("operation not supported for this entity")
	ErrNotFound     = errors.New("row not found")
	ErrNoForm       = errors.New("no form is open")
	ErrBusy         = errors.New("a submission is already in progress")
)

// Phase is the load state of the table.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Modal is the state of the entity form.
type Modal int

const (
	Closed Modal = iota
	Creating
	Editing
)

// ReadPolicy decides how failed list and search requests are presented.
type ReadPolicy int

const (
	// SurfaceReadErrors marks the page Failed and shows an error banner.
	SurfaceReadErrors ReadPolicy = iota
	// SoftFailReads shows an empty table without any banner.
	SoftFailReads
)

type BannerKind string

const (
	BannerNone    BannerKind = ""
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the single message slot of a page. Each new message replaces the
// previous one.
type Banner struct {
	Kind BannerKind
	Text string
}

// API is the subset of the remote client a page needs.
type API interface {
	Get(ctx context.Context, cred client.Credential, path string, query url.Values, out any) error
	Post(ctx context.Context, cred client.Credential, path string, body, out any) error
	Put(ctx context.Context, cred client.Credential, path string, body, out any) error
	Delete(ctx context.Context, cred client.Credential, path string) error
	Accounts(ctx context.Context, cred client.Credential) (domain.AccountSettings, error)
}

type Options struct {
	ReadPolicy ReadPolicy
	Now        func() time.Time
}

// Page holds the transient, non-authoritative copy of one entity list along
// with its form and banner state. Rows are only ever replaced by a fresh
// fetch.
type Page[T any] struct {
	res  Resource[T]
	api  API
	opts Options

	mu         sync.Mutex
	phase      Phase
	modal      Modal
	editID     string
	form       map[string]string
	submitting bool
	banner     Banner
	readFailed bool
	rows       []T
	env        Env
	term       string
	gen        uint64
}

// New builds a page for res backed by api.
func New[T any](res Resource[T], api API, opts Options) *Page[T] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Page[T]{
		res:  res,
		api:  api,
		opts: opts,
		env:  Env{Settings: domain.DefaultAccountSettings()},
	}
}

func (p *Page[T]) Name() string { return p.res.Name }

func (p *Page[T]) Title() string { return p.res.Title }

func (p *Page[T]) CanCreate() bool { return p.res.CanCreate }

func (p *Page[T]) Fields() []Field { return p.res.Fields }

// Load fetches the full collection.
func (p *Page[T]) Load(ctx context.Context, cred client.Credential) error {
	return p.Search(ctx, cred, "")
}

// Search fetches rows whose text starts with term, or the full list when
// term is blank. Only the most recently started search may update the page;
// earlier responses arriving later return ErrStale and are dropped.
func (p *Page[T]) Search(ctx context.Context, cred client.Credential, term string) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.term = term
	p.phase = Loading
	p.mu.Unlock()

	rows, env, err := p.fetch(ctx, cred, strings.TrimSpace(term))

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return ErrStale
	}
	if err != nil {
		log.Printf("%s: load failed: %v", p.res.Name, err)
		p.rows = nil
		if p.opts.ReadPolicy == SoftFailReads {
			p.phase = Loaded
			return nil
		}
		p.phase = Failed
		p.banner = Banner{Kind: BannerError, Text: client.Message(err, fmt.Sprintf("Failed to load %s", strings.ToLower(p.res.Title)))}
		p.readFailed = true
		return err
	}
	p.rows = rows
	p.env = env
	p.phase = Loaded
	if p.readFailed {
		p.banner = Banner{}
		p.readFailed = false
	}
	return nil
}

func (p *Page[T]) fetch(ctx context.Context, cred client.Credential, term string) ([]T, Env, error) {
	env := Env{Settings: domain.DefaultAccountSettings(), Today: p.opts.Now()}
	if p.res.NeedsSettings {
		settings, err := p.api.Accounts(ctx, cred)
		if err != nil {
			log.Printf("%s: account settings unavailable, using defaults: %v", p.res.Name, err)
		}
		env.Settings = settings
	}

	var raw json.RawMessage
	var err error
	if term == "" {
		err = p.api.Get(ctx, cred, p.res.ListPath, nil, &raw)
	} else {
		err = p.api.Get(ctx, cred, p.res.SearchPath, url.Values{p.res.SearchParam: {term}}, &raw)
	}
	if err != nil {
		return nil, env, err
	}
	rows, err := decodeRows[T](raw, p.res.ListKey)
	return rows, env, err
}

// decodeRows accepts either a bare array or an object holding the array
// under key.
func decodeRows[T any](raw json.RawMessage, key string) ([]T, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var rows []T
	if trimmed[0] == '[' {
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
		return rows, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	inner, ok := envelope[key]
	if !ok || key == "" {
		return nil, fmt.Errorf("decode rows: response has no %q list", key)
	}
	if err := json.Unmarshal(inner, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// OpenCreate opens an empty form.
func (p *Page[T]) OpenCreate() error {
	if !p.res.CanCreate {
		return ErrUnsupported
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modal = Creating
	p.editID = ""
	p.form = p.res.defaults()
	return nil
}

// OpenEdit opens the form pre-populated from the loaded row with id.
func (p *Page[T]) OpenEdit(id string) error {
	if !p.res.CanUpdate {
		return ErrUnsupported
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, row := range p.rows {
		if string(p.res.ID(row)) == id {
			p.modal = Editing
			p.editID = id
			p.form = p.res.FormValues(row)
			return nil
		}
	}
	return ErrNotFound
}

// Cancel closes the form without submitting.
func (p *Page[T]) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modal = Closed
	p.editID = ""
	p.form = nil
}

// Submit validates values and sends them as a create or an update depending
// on the open form. Validation failures never reach the network.
func (p *Page[T]) Submit(ctx context.Context, cred client.Credential, values map[string]string) error {
	p.mu.Lock()
	if p.modal == Closed {
		p.mu.Unlock()
		return ErrNoForm
	}
	if p.submitting {
		p.mu.Unlock()
		return ErrBusy
	}
	p.form = cloneValues(values)
	if err := Validate(p.res.Fields, values); err != nil {
		p.banner = Banner{Kind: BannerError, Text: err.Error()}
		p.readFailed = false
		p.mu.Unlock()
		return err
	}
	modal, id := p.modal, p.editID
	p.submitting = true
	p.mu.Unlock()

	var err error
	if modal == Creating {
		err = p.api.Post(ctx, cred, p.res.ListPath, p.payload(values, false), nil)
	} else {
		err = p.api.Put(ctx, cred, p.res.itemPath(id), p.payload(values, true), nil)
	}

	p.mu.Lock()
	p.submitting = false
	if err != nil {
		p.setError(client.Message(err, fmt.Sprintf("Failed to save %s", p.res.Singular)))
		p.mu.Unlock()
		return err
	}
	verb := "created"
	if modal == Editing {
		verb = "updated"
	}
	p.modal = Closed
	p.editID = ""
	p.form = nil
	p.setSuccess(fmt.Sprintf("%s %s", capitalize(p.res.Singular), verb))
	term := p.term
	p.mu.Unlock()

	return p.resync(ctx, cred, term)
}

// Create validates values and posts them without touching the form state.
// It is the path used for bulk imports.
func (p *Page[T]) Create(ctx context.Context, cred client.Credential, values map[string]string) error {
	if !p.res.CanCreate {
		return ErrUnsupported
	}
	if err := Validate(p.res.Fields, values); err != nil {
		return err
	}
	return p.api.Post(ctx, cred, p.res.ListPath, p.payload(values, false), nil)
}

// Delete removes the row with id once the operator has confirmed. The
// table is refetched afterwards rather than patched.
func (p *Page[T]) Delete(ctx context.Context, cred client.Credential, id string, confirmed bool) error {
	if !p.res.CanDelete {
		return ErrUnsupported
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := p.api.Delete(ctx, cred, p.res.itemPath(id)); err != nil {
		p.mu.Lock()
		p.setError(client.Message(err, fmt.Sprintf("Failed to delete %s", p.res.Singular)))
		p.mu.Unlock()
		return err
	}
	p.mu.Lock()
	p.setSuccess(fmt.Sprintf("%s deleted", capitalize(p.res.Singular)))
	term := p.term
	p.mu.Unlock()
	return p.resync(ctx, cred, term)
}

// Refresh re-runs the current search.
func (p *Page[T]) Refresh(ctx context.Context, cred client.Credential) error {
	p.mu.Lock()
	term := p.term
	p.mu.Unlock()
	return p.Search(ctx, cred, term)
}

func (p *Page[T]) resync(ctx context.Context, cred client.Credential, term string) error {
	err := p.Search(ctx, cred, term)
	if errors.Is(err, ErrStale) {
		return nil
	}
	return err
}

// payload keeps only declared fields. Creates omit blank optional values;
// updates send every field so values can be cleared.
func (p *Page[T]) payload(values map[string]string, update bool) map[string]string {
	body := make(map[string]string, len(p.res.Fields))
	for _, f := range p.res.Fields {
		v := strings.TrimSpace(values[f.Name])
		if v == "" && !update {
			continue
		}
		body[f.Name] = v
	}
	return body
}

func (p *Page[T]) setError(text string) {
	p.banner = Banner{Kind: BannerError, Text: text}
	p.readFailed = false
}

func (p *Page[T]) setSuccess(text string) {
	p.banner = Banner{Kind: BannerSuccess, Text: text}
	p.readFailed = false
}

func cloneValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
