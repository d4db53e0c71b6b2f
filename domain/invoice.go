package domain

type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "Paid"
	PaymentRemaining PaymentStatus = "Remaining"
)

type ProviderRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// PurchaseInvoice is an incoming bill from a provider.
type PurchaseInvoice struct {
	ID            ID            `json:"id"`
	Provider      ProviderRef   `json:"provider"`
	InvoiceNumber string        `json:"invoiceNumber"`
	InvoiceDate   string        `json:"invoiceDate"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	DiscountTotal Money         `json:"discountTotal"`
	SGSTTotal     Money         `json:"sgstTotal"`
	CGSTTotal     Money         `json:"cgstTotal"`
	TotalAmount   Money         `json:"totalAmount"`
	CreatedAt     string        `json:"createdAt,omitempty"`
	UpdatedAt     string        `json:"updatedAt,omitempty"`
}

type PatientRef struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// SalesInvoice is a bill issued to a patient. Credit marks a deferred-payment
// sale; false is a cash sale.
type SalesInvoice struct {
	ID            ID         `json:"id"`
	Patient       PatientRef `json:"patient"`
	DoctorName    string     `json:"doctorName"`
	BillDate      string     `json:"billDate"`
	DiscountTotal Money      `json:"discountTotal"`
	SGSTTotal     Money      `json:"sgstTotal"`
	CGSTTotal     Money      `json:"cgstTotal"`
	TotalAmount   Money      `json:"totalAmount"`
	Credit        bool       `json:"credit"`
	CreatedAt     string     `json:"createdAt,omitempty"`
	UpdatedAt     string     `json:"updatedAt,omitempty"`
}
