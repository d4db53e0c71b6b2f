package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a server-authoritative decimal amount. The raw text is kept as
// received; Decimal and Display exist for rendering only.
type Money string

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Money(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = Money(n.String())
	return nil
}

// Decimal parses the amount. Blank or malformed text yields ok=false.
func (m Money) Decimal() (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(string(m))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Display formats the amount with two decimal places, falling back to the raw
// text when it cannot be parsed.
func (m Money) Display() string {
	d, ok := m.Decimal()
	if !ok {
		return string(m)
	}
	return d.StringFixed(2)
}

// SumMoney adds the parseable amounts and skips the rest.
func SumMoney(amounts ...Money) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		if d, ok := a.Decimal(); ok {
			total = total.Add(d)
		}
	}
	return total
}
