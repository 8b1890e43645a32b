package models

import (
	"time"

	"github.com/satrianet/inventaris-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Maintenance is a customer-site service visit. It may replace assets
// (retire one, commission another) and consume bulk materials, both of which
// cascade into the asset log and the customer's installed-materials ledger.
type Maintenance struct {
	DocNumber       string               `json:"docNumber"`
	Date            time.Time            `json:"date"`
	CustomerID      string               `json:"customerId"`
	Technician      string               `json:"technician"`
	AssetIDs        []string             `json:"assetIds,omitempty"`
	WorkDescription string               `json:"workDescription,omitempty"`
	MaterialsUsed   []MaterialUsage      `json:"materialsUsed,omitempty"`
	Replacements    []AssetReplacement   `json:"replacements,omitempty"`
	Status          enums.ItemStatus     `json:"status"`
	Attachments     []string             `json:"attachments,omitempty"`
	CompletedBy     string               `json:"completedBy,omitempty"`
	CompletionDate  *time.Time           `json:"completionDate,omitempty"`
}

// MaterialUsage is a bulk-material quantity consumed at the premises,
// measured in the material's base unit (meters, pcs).
type MaterialUsage struct {
	ItemName string          `json:"itemName"`
	Brand    string          `json:"brand"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AssetReplacement swaps an installed asset for a fresh one during a visit.
type AssetReplacement struct {
	OldAssetID              string               `json:"oldAssetId"`
	NewAssetID              string               `json:"newAssetId"`
	RetrievedAssetCondition enums.AssetCondition `json:"retrievedAssetCondition"`
}
