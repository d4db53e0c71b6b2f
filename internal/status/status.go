// Package status derives the display badges shown next to medicine stock rows.
package status

import (
	"math"
	"strings"
	"time"

	"medeasy/admin/domain"
)

const (
	LabelLowStock     = "Low Stock"
	LabelInStock      = "In Stock"
	LabelExpiringSoon = "Expiring Soon"
	LabelValid        = "Valid"
	LabelExpired      = "Expired"
	LabelUnknown      = "Unknown"
)

// Badge is a label plus the CSS class it is rendered with.
type Badge struct {
	Label string
	Class string
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"}

// ParseDate accepts plain dates and RFC3339 timestamps. Plain dates are
// midnight UTC.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StockLevel flags quantities at or below the threshold. A negative threshold
// means the account value was unavailable.
func StockLevel(quantity, threshold int) Badge {
	if threshold < 0 {
		threshold = domain.DefaultLowStockThreshold
	}
	if quantity <= threshold {
		return Badge{Label: LabelLowStock, Class: "status-low"}
	}
	return Badge{Label: LabelInStock, Class: "status-ok"}
}

// DaysUntil returns the whole days from today to expiry, rounded up.
func DaysUntil(expiry, today time.Time) int {
	return int(math.Ceil(expiry.Sub(today).Hours() / 24))
}

// ExpiryProximity classifies an expiry date relative to today. Dates in the
// past are Expired; dates within leadDays are Expiring Soon.
func ExpiryProximity(expiryDate string, leadDays int, today time.Time) Badge {
	expiry, ok := ParseDate(expiryDate)
	if !ok {
		return Badge{Label: LabelUnknown, Class: "status-unknown"}
	}
	if leadDays <= 0 {
		leadDays = domain.DefaultExpiryLeadDays
	}
	days := DaysUntil(expiry, today)
	switch {
	case days < 0:
		return Badge{Label: LabelExpired, Class: "status-expired"}
	case days <= leadDays:
		return Badge{Label: LabelExpiringSoon, Class: "status-warn"}
	default:
		return Badge{Label: LabelValid, Class: "status-ok"}
	}
}

// Summary holds the stock page counters.
type Summary struct {
	Total    int
	InStock  int
	LowStock int
}

// StockSummary counts rows by stock level using the same threshold as
// StockLevel.
func StockSummary(rows []domain.MedicineStock, threshold int) Summary {
	s := Summary{Total: len(rows)}
	for _, row := range rows {
		if StockLevel(row.QuantityAvailable, threshold).Label == LabelLowStock {
			s.LowStock++
		} else {
			s.InStock++
		}
	}
	return s
}
