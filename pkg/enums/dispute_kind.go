package enums

import "fmt"

// DisputeKind categorizes the discrepancy behind a dispute record.
type DisputeKind string

const (
	DisputeKindPrice    DisputeKind = "price"
	DisputeKindQuantity DisputeKind = "quantity"
	DisputeKindMissing  DisputeKind = "missing"
)

var validDisputeKinds = []DisputeKind{
	DisputeKindPrice,
	DisputeKindQuantity,
	DisputeKindMissing,
}

// String implements fmt.Stringer.
func (d DisputeKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DisputeKind.
func (d DisputeKind) IsValid() bool {
	for _, candidate := range validDisputeKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisputeKind converts raw input into a DisputeKind.
func ParseDisputeKind(value string) (DisputeKind, error) {
	for _, candidate := range validDisputeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute kind %q", value)
}

// DisputeKindForStatus maps a non-matched pairing outcome to its dispute kind.
func DisputeKindForStatus(status MatchStatus) (DisputeKind, error) {
	switch status {
	case MatchStatusPriceMismatch:
		return DisputeKindPrice, nil
	case MatchStatusQuantityMismatch:
		return DisputeKindQuantity, nil
	case MatchStatusMissingOnInvoice, MatchStatusMissingOnOrder:
		return DisputeKindMissing, nil
	default:
		return "", fmt.Errorf("match status %q does not produce a dispute", status)
	}
}
