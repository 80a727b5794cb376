package enums

import "fmt"

// LineRole identifies which side of a reconciliation a line set belongs to.
type LineRole string

const (
	LineRoleOrder   LineRole = "order"
	LineRoleInvoice LineRole = "invoice"
)

var validLineRoles = []LineRole{
	LineRoleOrder,
	LineRoleInvoice,
}

// String implements fmt.Stringer.
func (l LineRole) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineRole.
func (l LineRole) IsValid() bool {
	for _, candidate := range validLineRoles {
		if candidate == l {
			return true
		}
	}
	return false
}

// OrgType returns the organization type expected to own lines in this role.
func (l LineRole) OrgType() OrgType {
	if l == LineRoleInvoice {
		return OrgTypeSupplier
	}
	return OrgTypeRestaurant
}

// ParseLineRole converts raw input into a LineRole.
func ParseLineRole(value string) (LineRole, error) {
	for _, candidate := range validLineRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line role %q", value)
}
