package domain

import (
	"encoding/json"
	"testing"
)

func TestIDAcceptsStringAndNumber(t *testing.T) {
	var rows []struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal([]byte(`[{"id":"c-1"},{"id":42},{"id":null}]`), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []ID{"c-1", "42", ""}
	for i, w := range want {
		if rows[i].ID != w {
			t.Errorf("row %d: expected %q, got %q", i, w, rows[i].ID)
		}
	}
}

func TestMoneyDisplay(t *testing.T) {
	cases := map[Money]string{
		"12.5":     "12.50",
		"0":        "0.00",
		"1000.456": "1000.46",
		"":         "",
		"n/a":      "n/a",
	}
	for in, want := range cases {
		if got := in.Display(); got != want {
			t.Errorf("Display(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestMoneyFromNumber(t *testing.T) {
	var inv PurchaseInvoice
	if err := json.Unmarshal([]byte(`{"totalAmount": 99.9, "sgstTotal": "4.50"}`), &inv); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if inv.TotalAmount != "99.9" || inv.SGSTTotal != "4.50" {
		t.Errorf("unexpected amounts %q %q", inv.TotalAmount, inv.SGSTTotal)
	}
}

func TestSumMoneySkipsMalformed(t *testing.T) {
	got := SumMoney("10.10", "bad", "", "5.05")
	if got.StringFixed(2) != "15.15" {
		t.Errorf("expected 15.15, got %s", got.StringFixed(2))
	}
}

func TestAccountSettingsShapes(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		threshold int
		lead      int
	}{
		{"bare", `{"lowStockThreshold":5,"expiryAlertLeadTime":60}`, 5, 60},
		{"wrapped", `{"account":{"lowStockThreshold":7,"expiryAlertLeadTimeDays":14}}`, 7, 14},
		{"empty", `{}`, DefaultLowStockThreshold, DefaultExpiryLeadDays},
		{"zero threshold", `{"lowStockThreshold":0,"expiryAlertLeadTime":0}`, 0, DefaultExpiryLeadDays},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s AccountSettings
			if err := json.Unmarshal([]byte(tc.body), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if s.LowStockThreshold != tc.threshold || s.ExpiryLeadDays != tc.lead {
				t.Errorf("expected %d/%d, got %d/%d", tc.threshold, tc.lead, s.LowStockThreshold, s.ExpiryLeadDays)
			}
		})
	}
}
