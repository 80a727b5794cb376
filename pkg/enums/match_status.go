package enums

import "fmt"

// MatchStatus labels the outcome of pairing one order line with one invoice line.
type MatchStatus string

const (
	MatchStatusMatched          MatchStatus = "matched"
	MatchStatusPriceMismatch    MatchStatus = "price_mismatch"
	MatchStatusQuantityMismatch MatchStatus = "quantity_mismatch"
	MatchStatusMissingOnInvoice MatchStatus = "missing_on_invoice"
	MatchStatusMissingOnOrder   MatchStatus = "missing_on_order"
)

var validMatchStatuses = []MatchStatus{
	MatchStatusMatched,
	MatchStatusPriceMismatch,
	MatchStatusQuantityMismatch,
	MatchStatusMissingOnInvoice,
	MatchStatusMissingOnOrder,
}

// String implements fmt.Stringer.
func (m MatchStatus) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MatchStatus.
func (m MatchStatus) IsValid() bool {
	for _, candidate := range validMatchStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsDisputed reports whether the status requires a dispute record.
func (m MatchStatus) IsDisputed() bool {
	return m.IsValid() && m != MatchStatusMatched
}

// ParseMatchStatus converts raw input into a MatchStatus.
func ParseMatchStatus(value string) (MatchStatus, error) {
	for _, candidate := range validMatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid match status %q", value)
}
