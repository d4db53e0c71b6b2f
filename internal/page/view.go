package page

import (
	"context"

	"medeasy/admin/internal/client"
	"medeasy/admin/internal/status"
)

// Row is one rendered table row.
type Row struct {
	ID     string
	Cells  []string
	Badges []status.Badge
}

// View is an immutable snapshot of a page, ready for rendering.
type View struct {
	Name     string
	Title    string
	Singular string

	Phase      Phase
	Modal      Modal
	EditID     string
	Fields     []Field
	Form       map[string]string
	Submitting bool
	Banner     Banner
	Term       string

	Headers []string
	Rows    []Row
	Stats   []Stat

	CanCreate bool
	CanUpdate bool
	CanDelete bool
}

// Controller is the entity-independent surface of a Page used by the HTTP
// layer and the importer.
type Controller interface {
	Name() string
	Title() string
	CanCreate() bool
	Fields() []Field
	Load(ctx context.Context, cred client.Credential) error
	Search(ctx context.Context, cred client.Credential, term string) error
	Refresh(ctx context.Context, cred client.Credential) error
	OpenCreate() error
	OpenEdit(id string) error
	Cancel()
	Submit(ctx context.Context, cred client.Credential, values map[string]string) error
	Create(ctx context.Context, cred client.Credential, values map[string]string) error
	Delete(ctx context.Context, cred client.Credential, id string, confirmed bool) error
	View() View
}

var _ Controller = (*Page[struct{}])(nil)

// View renders the current rows through the resource's columns and hooks.
func (p *Page[T]) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{
		Name:       p.res.Name,
		Title:      p.res.Title,
		Singular:   p.res.Singular,
		Phase:      p.phase,
		Modal:      p.modal,
		EditID:     p.editID,
		Fields:     p.res.Fields,
		Form:       cloneValues(p.form),
		Submitting: p.submitting,
		Banner:     p.banner,
		Term:       p.term,
		CanCreate:  p.res.CanCreate,
		CanUpdate:  p.res.CanUpdate,
		CanDelete:  p.res.CanDelete,
	}
	for _, col := range p.res.Columns {
		v.Headers = append(v.Headers, col.Header)
	}
	v.Headers = append(v.Headers, p.res.BadgeHeaders...)

	env := p.env
	env.Today = p.opts.Now()
	v.Rows = make([]Row, 0, len(p.rows))
	for _, item := range p.rows {
		row := Row{ID: string(p.res.ID(item)), Cells: make([]string, 0, len(p.res.Columns))}
		for _, col := range p.res.Columns {
			row.Cells = append(row.Cells, col.Render(item))
		}
		if p.res.Badges != nil {
			row.Badges = p.res.Badges(item, env)
		}
		v.Rows = append(v.Rows, row)
	}
	if p.res.Summary != nil {
		v.Stats = p.res.Summary(p.rows, env)
	}
	return v
}

// Cells flattens the view into plain text rows, badges included, for export.
func (v View) Cells() [][]string {
	out := make([][]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		line := append([]string(nil), r.Cells...)
		for _, b := range r.Badges {
			line = append(line, b.Label)
		}
		out = append(out, line)
	}
	return out
}

func (v View) Loading() bool  { return v.Phase == Loading }
func (v View) Failed() bool   { return v.Phase == Failed }
func (v View) FormOpen() bool { return v.Modal != Closed }
func (v View) Editing() bool  { return v.Modal == Editing }
