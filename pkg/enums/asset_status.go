package enums

import "fmt"

// AssetStatus tracks where an asset currently sits in its lifecycle.
type AssetStatus string

const (
	AssetStatusInStorage      AssetStatus = "in_storage"
	AssetStatusInUse          AssetStatus = "in_use"
	AssetStatusDamaged        AssetStatus = "damaged"
	AssetStatusUnderRepair    AssetStatus = "under_repair"
	AssetStatusDecommissioned AssetStatus = "decommissioned"
)

var validAssetStatuses = []AssetStatus{
	AssetStatusInStorage,
	AssetStatusInUse,
	AssetStatusDamaged,
	AssetStatusUnderRepair,
	AssetStatusDecommissioned,
}

// String implements fmt.Stringer.
func (a AssetStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssetStatus.
func (a AssetStatus) IsValid() bool {
	for _, candidate := range validAssetStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the asset lifecycle.
func (a AssetStatus) IsTerminal() bool {
	return a == AssetStatusDecommissioned
}

// ParseAssetStatus converts raw input into an AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, error) {
	for _, candidate := range validAssetStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset status %q", value)
}
