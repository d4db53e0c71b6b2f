package domain

import "encoding/json"

const (
	DefaultLowStockThreshold = 10
	DefaultExpiryLeadDays    = 30
)

// AccountSettings carries the per-account thresholds used for stock badges.
type AccountSettings struct {
	LowStockThreshold int `json:"lowStockThreshold"`
	ExpiryLeadDays    int `json:"expiryAlertLeadTime"`
}

// DefaultAccountSettings is used whenever the settings endpoint is unavailable.
func DefaultAccountSettings() AccountSettings {
	return AccountSettings{
		LowStockThreshold: DefaultLowStockThreshold,
		ExpiryLeadDays:    DefaultExpiryLeadDays,
	}
}

type accountFields struct {
	LowStockThreshold       *int `json:"lowStockThreshold"`
	ExpiryAlertLeadTime     *int `json:"expiryAlertLeadTime"`
	ExpiryAlertLeadTimeDays *int `json:"expiryAlertLeadTimeDays"`
}

// UnmarshalJSON accepts the settings either bare or wrapped in an "account"
// object, with the lead time under either of its two names. Missing values,
// a negative threshold or a non-positive lead time fall back to the defaults.
func (s *AccountSettings) UnmarshalJSON(data []byte) error {
	var envelope struct {
		accountFields
		Account *accountFields `json:"account"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	f := envelope.accountFields
	if envelope.Account != nil {
		f = *envelope.Account
	}

	*s = DefaultAccountSettings()
	if f.LowStockThreshold != nil && *f.LowStockThreshold >= 0 {
		s.LowStockThreshold = *f.LowStockThreshold
	}
	lead := f.ExpiryAlertLeadTime
	if lead == nil {
		lead = f.ExpiryAlertLeadTimeDays
	}
	if lead != nil && *lead > 0 {
		s.ExpiryLeadDays = *lead
	}
	return nil
}
