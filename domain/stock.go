package domain

type MedicineRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	HSN  string `json:"hsn,omitempty"`
}

// MedicineStock is one received batch of a medicine. It is only changed by
// purchase-invoice workflows on the server; the console can list and delete.
type MedicineStock struct {
	ID                ID          `json:"id"`
	Medicine          MedicineRef `json:"medicine"`
	BatchNumber       string      `json:"batchNumber"`
	IncomingDate      string      `json:"incomingDate"`
	ExpiryDate        string      `json:"expiryDate"`
	QuantityAvailable int         `json:"quantityAvailable"`
	Price             Money       `json:"price"`
	UnitsPerPack      *int        `json:"unitsPerPack,omitempty"`
	CreatedAt         string      `json:"createdAt,omitempty"`
	UpdatedAt         string      `json:"updatedAt,omitempty"`
}
