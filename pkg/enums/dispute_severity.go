package enums

import "fmt"

// DisputeSeverity buckets disputes by the amount at risk.
type DisputeSeverity string

const (
	DisputeSeverityLow    DisputeSeverity = "low"
	DisputeSeverityMedium DisputeSeverity = "medium"
	DisputeSeverityHigh   DisputeSeverity = "high"
)

var validDisputeSeverities = []DisputeSeverity{
	DisputeSeverityLow,
	DisputeSeverityMedium,
	DisputeSeverityHigh,
}

// String implements fmt.Stringer.
func (d DisputeSeverity) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DisputeSeverity.
func (d DisputeSeverity) IsValid() bool {
	for _, candidate := range validDisputeSeverities {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisputeSeverity converts raw input into a DisputeSeverity.
func ParseDisputeSeverity(value string) (DisputeSeverity, error) {
	for _, candidate := range validDisputeSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute severity %q", value)
}
