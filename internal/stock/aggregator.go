// Package stock derives per-model inventory counts from the flat asset
// collection. It is a read-time projection: nothing here mutates state, and
// it is cheap enough to recompute on every read.
package stock

import (
	"context"
	"fmt"
	"sort"

	"github.com/satrianet/inventaris-backend/internal/store"
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
	"github.com/satrianet/inventaris-backend/pkg/models"
	"github.com/shopspring/decimal"
)

// UnknownCategory is reported for assets whose category or type no longer
// resolves against the catalog.
const UnknownCategory = "N/A"

// DefaultLowStockThreshold applies when the caller supplies none for a model.
const DefaultLowStockThreshold = 5

// ModelStock is the aggregated view for one (name, brand) model. Quantities
// are in the model's base unit: 1 per serialized asset, converted purchase
// lots for bulk materials.
type ModelStock struct {
	Name           string
	Brand          string
	Category       string
	TrackingMethod enums.TrackingMethod
	UnitOfMeasure  string
	InStorage      decimal.Decimal
	InUse          decimal.Decimal
	Damaged        decimal.Decimal
	Total          decimal.Decimal
	ValueInStorage decimal.Decimal
	LowStock       bool
}

// Key identifies a model the way thresholds are supplied.
func Key(name, brand string) string {
	return fmt.Sprintf("%s|%s", name, brand)
}

// Thresholds maps Key(name, brand) to a low-stock threshold in base units,
// compared against the in-storage quantity (not the total).
type Thresholds map[string]int

// Aggregator projects the asset collection against the catalog.
type Aggregator struct {
	assets     *store.Collection[models.Asset]
	categories *store.Collection[models.AssetCategory]
}

// NewAggregator builds a stock aggregator.
func NewAggregator(assets *store.Collection[models.Asset], categories *store.Collection[models.AssetCategory]) (*Aggregator, error) {
	if assets == nil {
		return nil, fmt.Errorf("assets collection required")
	}
	if categories == nil {
		return nil, fmt.Errorf("categories collection required")
	}
	return &Aggregator{assets: assets, categories: categories}, nil
}

// Summarize groups all non-decommissioned assets by (name, brand). Assets in
// statuses outside the storage/use/damaged buckets (under repair) still count
// toward the total, which is why the three buckets may sum below it.
func (a *Aggregator) Summarize(ctx context.Context, thresholds Thresholds) ([]ModelStock, error) {
	assets, err := a.assets.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assets")
	}
	categories, err := a.categories.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}

	groups := make(map[string]*ModelStock)
	var order []string
	for _, asset := range assets {
		if asset.Status == enums.AssetStatusDecommissioned {
			continue
		}

		key := Key(asset.Name, asset.Brand)
		group, ok := groups[key]
		if !ok {
			category, assetType := resolveType(categories, asset)
			group = &ModelStock{
				Name:           asset.Name,
				Brand:          asset.Brand,
				Category:       category,
				TrackingMethod: assetType.TrackingMethod,
				UnitOfMeasure:  assetType.UnitOfMeasure,
				InStorage:      decimal.Zero,
				InUse:          decimal.Zero,
				Damaged:        decimal.Zero,
				Total:          decimal.Zero,
				ValueInStorage: decimal.Zero,
			}
			if group.TrackingMethod == "" {
				group.TrackingMethod = enums.TrackingMethodIndividual
			}
			groups[key] = group
			order = append(order, key)
		}

		quantity := baseQuantity(categories, asset)
		group.Total = group.Total.Add(quantity)
		switch asset.Status {
		case enums.AssetStatusInStorage:
			group.InStorage = group.InStorage.Add(quantity)
			group.ValueInStorage = group.ValueInStorage.Add(asset.PurchasePrice)
		case enums.AssetStatusInUse:
			group.InUse = group.InUse.Add(quantity)
		case enums.AssetStatusDamaged:
			group.Damaged = group.Damaged.Add(quantity)
		}
	}

	sort.Strings(order)
	result := make([]ModelStock, 0, len(order))
	for _, key := range order {
		group := groups[key]
		threshold := DefaultLowStockThreshold
		if t, ok := thresholds[key]; ok {
			threshold = t
		}
		group.LowStock = group.InStorage.LessThan(decimal.NewFromInt(int64(threshold)))
		result = append(result, *group)
	}
	return result, nil
}

// resolveType finds the asset's catalog entry, falling back to N/A when the
// category or type has since been removed.
func resolveType(categories []models.AssetCategory, asset models.Asset) (string, models.AssetType) {
	for _, category := range categories {
		if category.Name != asset.Category {
			continue
		}
		for _, assetType := range category.Types {
			if assetType.Name == asset.Type {
				return category.Name, assetType
			}
		}
		return category.Name, models.AssetType{TrackingMethod: enums.TrackingMethodIndividual}
	}
	return UnknownCategory, models.AssetType{TrackingMethod: enums.TrackingMethodIndividual}
}

// baseQuantity converts a bulk lot from purchase units (rolls) to the base
// unit (meters); serialized assets contribute one unit each.
func baseQuantity(categories []models.AssetCategory, asset models.Asset) decimal.Decimal {
	_, assetType := resolveType(categories, asset)
	if assetType.TrackingMethod == enums.TrackingMethodBulk {
		return asset.UnitQuantity().Mul(assetType.ConversionFactor())
	}
	return decimal.NewFromInt(1)
}

// ResolveUnit returns the base unit of measure for a bulk-tracked material
// by name, used by the installed-materials ledger.
func ResolveUnit(categories []models.AssetCategory, itemName string) string {
	for _, category := range categories {
		for _, assetType := range category.Types {
			if assetType.TrackingMethod == enums.TrackingMethodBulk && assetType.Name == itemName {
				return assetType.UnitOfMeasure
			}
		}
	}
	return "pcs"
}
