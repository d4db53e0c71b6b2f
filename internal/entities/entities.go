// Package entities holds the page descriptors for each admin screen.
package entities

import (
	"strconv"

	"medeasy/admin/domain"
	"medeasy/admin/internal/page"
	"medeasy/admin/internal/status"
)

func Customers() page.Resource[domain.Customer] {
	return page.Resource[domain.Customer]{
		Name:        "customers",
		Title:       "Customers",
		Singular:    "customer",
		ListPath:    "/api/customers",
		ListKey:     "customers",
		SearchPath:  "/api/customers/search",
		SearchParam: "q",
		ItemPath:    "/api/customers",
		CanCreate:   true,
		CanUpdate:   true,
		CanDelete:   true,
		Fields: []page.Field{
			{Name: "name", Label: "Name", Kind: "text", Required: true, Rules: "max=120"},
			{Name: "phone", Label: "Phone", Kind: "tel", Rules: "max=20"},
			{Name: "address", Label: "Address", Kind: "textarea"},
		},
		Columns: []page.Column[domain.Customer]{
			{Header: "Name", Render: func(c domain.Customer) string { return c.Name }},
			{Header: "Phone", Render: func(c domain.Customer) string { return orDash(c.Phone) }},
			{Header: "Address", Render: func(c domain.Customer) string { return orDash(c.Address) }},
			{Header: "Created", Render: func(c domain.Customer) string { return displayDate(c.CreatedAt) }},
		},
		ID: func(c domain.Customer) domain.ID { return c.ID },
		FormValues: func(c domain.Customer) map[string]string {
			return map[string]string{"name": c.Name, "phone": c.Phone, "address": c.Address}
		},
	}
}

func Providers() page.Resource[domain.Provider] {
	return page.Resource[domain.Provider]{
		Name:        "providers",
		Title:       "Providers",
		Singular:    "provider",
		ListPath:    "/api/providers",
		ListKey:     "providers",
		SearchPath:  "/api/providers/search",
		SearchParam: "q",
		ItemPath:    "/api/providers",
		CanCreate:   true,
		CanUpdate:   true,
		CanDelete:   true,
		Fields: []page.Field{
			{Name: "name", Label: "Name", Kind: "text", Required: true, Rules: "max=120"},
			{Name: "contactEmail", Label: "Contact email", Kind: "email", Required: true, Rules: "email"},
			{Name: "contactPhone", Label: "Contact phone", Kind: "tel", Required: true, Rules: "max=20"},
		},
		Columns: []page.Column[domain.Provider]{
			{Header: "Name", Render: func(p domain.Provider) string { return p.Name }},
			{Header: "Email", Render: func(p domain.Provider) string { return p.ContactEmail }},
			{Header: "Phone", Render: func(p domain.Provider) string { return p.ContactPhone }},
			{Header: "Created", Render: func(p domain.Provider) string { return displayDate(p.CreatedAt) }},
		},
		ID: func(p domain.Provider) domain.ID { return p.ID },
		FormValues: func(p domain.Provider) map[string]string {
			return map[string]string{"name": p.Name, "contactEmail": p.ContactEmail, "contactPhone": p.ContactPhone}
		},
	}
}

// MedicineStock is read-only apart from delete; stock only changes through
// purchase invoices on the server.
func MedicineStock() page.Resource[domain.MedicineStock] {
	return page.Resource[domain.MedicineStock]{
		Name:          "stock",
		Title:         "Medicine Stock",
		Singular:      "stock entry",
		ListPath:      "/api/medicine-stock/searchall",
		SearchPath:    "/api/medicine-stock/search",
		SearchParam:   "prefix",
		ItemPath:      "/api/medicine-stock",
		CanDelete:     true,
		NeedsSettings: true,
		Columns: []page.Column[domain.MedicineStock]{
			{Header: "Medicine", Render: func(s domain.MedicineStock) string { return s.Medicine.Name }},
			{Header: "HSN", Render: func(s domain.MedicineStock) string { return orDash(s.Medicine.HSN) }},
			{Header: "Batch", Render: func(s domain.MedicineStock) string { return s.BatchNumber }},
			{Header: "Incoming", Render: func(s domain.MedicineStock) string { return displayDate(s.IncomingDate) }},
			{Header: "Expiry", Render: func(s domain.MedicineStock) string { return displayDate(s.ExpiryDate) }},
			{Header: "Quantity", Render: func(s domain.MedicineStock) string { return strconv.Itoa(s.QuantityAvailable) }},
			{Header: "Units/Pack", Render: func(s domain.MedicineStock) string {
				if s.UnitsPerPack == nil {
					return "-"
				}
				return strconv.Itoa(*s.UnitsPerPack)
			}},
			{Header: "Price", Render: func(s domain.MedicineStock) string { return s.Price.Display() }},
		},
		BadgeHeaders: []string{"Stock", "Expiry Status"},
		Badges: func(s domain.MedicineStock, env page.Env) []status.Badge {
			return []status.Badge{
				status.StockLevel(s.QuantityAvailable, env.Settings.LowStockThreshold),
				status.ExpiryProximity(s.ExpiryDate, env.Settings.ExpiryLeadDays, env.Today),
			}
		},
		Summary: func(rows []domain.MedicineStock, env page.Env) []page.Stat {
			s := status.StockSummary(rows, env.Settings.LowStockThreshold)
			return []page.Stat{
				{Label: "Total", Value: strconv.Itoa(s.Total)},
				{Label: "In Stock", Value: strconv.Itoa(s.InStock)},
				{Label: "Low Stock", Value: strconv.Itoa(s.LowStock)},
			}
		},
		ID: func(s domain.MedicineStock) domain.ID { return s.ID },
	}
}

func PurchaseInvoices() page.Resource[domain.PurchaseInvoice] {
	return page.Resource[domain.PurchaseInvoice]{
		Name:        "purchases",
		Title:       "Purchase Invoices",
		Singular:    "purchase invoice",
		ListPath:    "/api/incoming-bills",
		ListKey:     "incomingBills",
		SearchPath:  "/api/incoming-bills/search",
		SearchParam: "q",
		ItemPath:    "/api/incoming-bills",
		CanDelete:   true,
		Columns: []page.Column[domain.PurchaseInvoice]{
			{Header: "Invoice #", Render: func(p domain.PurchaseInvoice) string { return p.InvoiceNumber }},
			{Header: "Provider", Render: func(p domain.PurchaseInvoice) string { return p.Provider.Name }},
			{Header: "Date", Render: func(p domain.PurchaseInvoice) string { return displayDate(p.InvoiceDate) }},
			{Header: "Discount", Render: func(p domain.PurchaseInvoice) string { return p.DiscountTotal.Display() }},
			{Header: "SGST", Render: func(p domain.PurchaseInvoice) string { return p.SGSTTotal.Display() }},
			{Header: "CGST", Render: func(p domain.PurchaseInvoice) string { return p.CGSTTotal.Display() }},
			{Header: "Total", Render: func(p domain.PurchaseInvoice) string { return p.TotalAmount.Display() }},
		},
		BadgeHeaders: []string{"Payment"},
		Badges: func(p domain.PurchaseInvoice, _ page.Env) []status.Badge {
			if p.PaymentStatus == domain.PaymentPaid {
				return []status.Badge{{Label: string(domain.PaymentPaid), Class: "status-ok"}}
			}
			return []status.Badge{{Label: string(domain.PaymentRemaining), Class: "status-warn"}}
		},
		Summary: func(rows []domain.PurchaseInvoice, _ page.Env) []page.Stat {
			var paid, remaining int
			totals := make([]domain.Money, 0, len(rows))
			for _, r := range rows {
				if r.PaymentStatus == domain.PaymentPaid {
					paid++
				} else {
					remaining++
				}
				totals = append(totals, r.TotalAmount)
			}
			return []page.Stat{
				{Label: "Invoices", Value: strconv.Itoa(len(rows))},
				{Label: "Paid", Value: strconv.Itoa(paid)},
				{Label: "Remaining", Value: strconv.Itoa(remaining)},
				{Label: "Total", Value: domain.SumMoney(totals...).StringFixed(2)},
			}
		},
		ID: func(p domain.PurchaseInvoice) domain.ID { return p.ID },
	}
}

func SalesInvoices() page.Resource[domain.SalesInvoice] {
	return page.Resource[domain.SalesInvoice]{
		Name:        "sales",
		Title:       "Sales Invoices",
		Singular:    "sales invoice",
		ListPath:    "/api/bills",
		ListKey:     "bills",
		SearchPath:  "/api/bills/search",
		SearchParam: "q",
		ItemPath:    "/api/bills",
		CanDelete:   true,
		Columns: []page.Column[domain.SalesInvoice]{
			{Header: "Patient", Render: func(s domain.SalesInvoice) string { return s.Patient.Name }},
			{Header: "Phone", Render: func(s domain.SalesInvoice) string { return orDash(s.Patient.Phone) }},
			{Header: "Doctor", Render: func(s domain.SalesInvoice) string { return orDash(s.DoctorName) }},
			{Header: "Date", Render: func(s domain.SalesInvoice) string { return displayDate(s.BillDate) }},
			{Header: "Discount", Render: func(s domain.SalesInvoice) string { return s.DiscountTotal.Display() }},
			{Header: "SGST", Render: func(s domain.SalesInvoice) string { return s.SGSTTotal.Display() }},
			{Header: "CGST", Render: func(s domain.SalesInvoice) string { return s.CGSTTotal.Display() }},
			{Header: "Total", Render: func(s domain.SalesInvoice) string { return s.TotalAmount.Display() }},
		},
		BadgeHeaders: []string{"Payment"},
		Badges: func(s domain.SalesInvoice, _ page.Env) []status.Badge {
			if s.Credit {
				return []status.Badge{{Label: "Credit", Class: "status-warn"}}
			}
			return []status.Badge{{Label: "Cash", Class: "status-ok"}}
		},
		Summary: func(rows []domain.SalesInvoice, _ page.Env) []page.Stat {
			var credit int
			totals := make([]domain.Money, 0, len(rows))
			for _, r := range rows {
				if r.Credit {
					credit++
				}
				totals = append(totals, r.TotalAmount)
			}
			return []page.Stat{
				{Label: "Bills", Value: strconv.Itoa(len(rows))},
				{Label: "Cash", Value: strconv.Itoa(len(rows) - credit)},
				{Label: "Credit", Value: strconv.Itoa(credit)},
				{Label: "Total", Value: domain.SumMoney(totals...).StringFixed(2)},
			}
		},
		ID: func(s domain.SalesInvoice) domain.ID { return s.ID },
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func displayDate(value string) string {
	if t, ok := status.ParseDate(value); ok {
		return t.Format("02 Jan 2006")
	}
	return orDash(value)
}
