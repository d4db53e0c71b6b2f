package entities

import (
	"medeasy/admin/internal/page"
)

// Workspace is the set of pages owned by one operator session. Pages do not
// share state with each other.
type Workspace struct {
	pages map[string]page.Controller
	order []string
}

// NewWorkspace builds one page per entity on top of api.
func NewWorkspace(api page.API, opts page.Options) *Workspace {
	pages := []page.Controller{
		page.New(Customers(), api, opts),
		page.New(Providers(), api, opts),
		page.New(MedicineStock(), api, opts),
		page.New(PurchaseInvoices(), api, opts),
		page.New(SalesInvoices(), api, opts),
	}
	w := &Workspace{pages: make(map[string]page.Controller, len(pages))}
	for _, p := range pages {
		w.pages[p.Name()] = p
		w.order = append(w.order, p.Name())
	}
	return w
}

// Page returns the controller for the route segment name.
func (w *Workspace) Page(name string) (page.Controller, bool) {
	p, ok := w.pages[name]
	return p, ok
}

// Names lists the pages in navigation order.
func (w *Workspace) Names() []string {
	return append([]string(nil), w.order...)
}
