package enums

import "fmt"

// AssetCondition records the physical state of an asset, independent of
// where it sits in the lifecycle.
type AssetCondition string

const (
	AssetConditionBrandNew    AssetCondition = "brand_new"
	AssetConditionGood        AssetCondition = "good"
	AssetConditionNeedsRepair AssetCondition = "needs_repair"
	AssetConditionBroken      AssetCondition = "broken"
)

var validAssetConditions = []AssetCondition{
	AssetConditionBrandNew,
	AssetConditionGood,
	AssetConditionNeedsRepair,
	AssetConditionBroken,
}

// String implements fmt.Stringer.
func (a AssetCondition) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AssetCondition.
func (a AssetCondition) IsValid() bool {
	for _, candidate := range validAssetConditions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAssetCondition converts raw input into an AssetCondition.
func ParseAssetCondition(value string) (AssetCondition, error) {
	for _, candidate := range validAssetConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset condition %q", value)
}
