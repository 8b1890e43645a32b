package models

import (
	"github.com/satrianet/inventaris-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// AssetCategory groups the asset types the organization stocks.
type AssetCategory struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Types []AssetType `json:"types,omitempty"`
}

// AssetType describes how one kind of asset is counted. Bulk types carry the
// conversion between purchase units and the base unit the stock view shows
// (a 1000m roll of cable: PurchaseUnit "roll", UnitOfMeasure "m",
// QuantityPerUnit 1000).
type AssetType struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	TrackingMethod  enums.TrackingMethod `json:"trackingMethod"`
	UnitOfMeasure   string               `json:"unitOfMeasure,omitempty"`
	PurchaseUnit    string               `json:"purchaseUnit,omitempty"`
	QuantityPerUnit decimal.Decimal      `json:"quantityPerUnit"`
}

// ConversionFactor returns base units per purchase unit, defaulting to 1.
func (t AssetType) ConversionFactor() decimal.Decimal {
	if t.QuantityPerUnit.IsZero() {
		return decimal.NewFromInt(1)
	}
	return t.QuantityPerUnit
}
