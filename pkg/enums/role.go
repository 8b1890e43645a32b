package enums

import "fmt"

// Role is the closed set of staff roles. Keeping this a parsed enum (rather
// than free strings at filter sites) is what catches a misspelled role at
// compile or parse time instead of silently matching nothing.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleLogistics  Role = "logistics"
	RoleCEO        Role = "ceo"
	RoleLeader     Role = "leader"
	RoleTechnician Role = "technician"
)

var validRoles = []Role{
	RoleAdmin,
	RoleLogistics,
	RoleCEO,
	RoleLeader,
	RoleTechnician,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
