package page

import (
	"time"

	"medeasy/admin/domain"
	"medeasy/admin/internal/status"
)

// Field is one input of the entity form.
type Field struct {
	Name     string
	Label    string
	Kind     string // html input type; "textarea" renders a text area
	Required bool
	// Rules is a go-playground/validator tag applied to non-blank values.
	Rules   string
	Default string
}

// Column renders one table cell for a row.
type Column[T any] struct {
	Header string
	Render func(T) string
}

// Env is what derived columns may depend on besides the row itself.
type Env struct {
	Settings domain.AccountSettings
	Today    time.Time
}

// Stat is one summary counter shown above the table.
type Stat struct {
	Label string
	Value string
}

// Resource describes one entity page: where it lives on the API, what the
// form and table look like, and which mutations it supports.
type Resource[T any] struct {
	Name     string // route segment, e.g. "customers"
	Title    string
	Singular string

	ListPath    string
	ListKey     string // envelope key of the list response; "" for a bare array
	SearchPath  string
	SearchParam string
	ItemPath    string // prefix for /{id}

	CanCreate bool
	CanUpdate bool
	CanDelete bool

	Fields  []Field
	Columns []Column[T]

	ID         func(T) domain.ID
	FormValues func(T) map[string]string

	// NeedsSettings fetches account settings on every load.
	NeedsSettings bool
	BadgeHeaders  []string
	Badges        func(T, Env) []status.Badge
	Summary       func([]T, Env) []Stat
}

func (r Resource[T]) itemPath(id string) string {
	return r.ItemPath + "/" + id
}

func (r Resource[T]) defaults() map[string]string {
	values := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		values[f.Name] = f.Default
	}
	return values
}
