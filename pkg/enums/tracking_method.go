package enums

import "fmt"

// TrackingMethod distinguishes serialized units from bulk-counted materials.
type TrackingMethod string

const (
	// TrackingMethodIndividual counts one asset record per physical unit.
	TrackingMethodIndividual TrackingMethod = "individual"
	// TrackingMethodBulk counts in a base unit (meters, pcs) converted from
	// purchase units (rolls, boxes) via the type's quantity-per-unit factor.
	TrackingMethodBulk TrackingMethod = "bulk"
)

// String implements fmt.Stringer.
func (t TrackingMethod) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TrackingMethod.
func (t TrackingMethod) IsValid() bool {
	return t == TrackingMethodIndividual || t == TrackingMethodBulk
}

// ParseTrackingMethod converts raw input into a TrackingMethod.
func ParseTrackingMethod(value string) (TrackingMethod, error) {
	switch TrackingMethod(value) {
	case TrackingMethodIndividual:
		return TrackingMethodIndividual, nil
	case TrackingMethodBulk:
		return TrackingMethodBulk, nil
	default:
		return "", fmt.Errorf("invalid tracking method %q", value)
	}
}
