package models

import (
	"time"

	"github.com/satrianet/inventaris-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Asset is a tracked physical unit, or one purchased lot of a bulk material.
//
// Invariants, owned by the callers of the lifecycle manager:
//   - CurrentUser is non-empty exactly when Status is in_use.
//   - Status in_storage implies CurrentUser empty and Location set to the
//     warehouse.
//
// Assets are never deleted, only transitioned to decommissioned.
type Asset struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serialNumber,omitempty"`
	MACAddress   string `json:"macAddress,omitempty"`

	Category string `json:"category"`
	Type     string `json:"type"`
	Brand    string `json:"brand"`
	Name     string `json:"name"`

	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Vendor        string          `json:"vendor,omitempty"`
	PONumber      string          `json:"poNumber,omitempty"`
	// WoRoIntNumber carries the internal work/request order that sourced the
	// asset (the procurement request id for registered stock).
	WoRoIntNumber   string     `json:"woRoIntNumber,omitempty"`
	WarrantyEndDate *time.Time `json:"warrantyEndDate,omitempty"`

	// Quantity is the purchased amount in purchase units for bulk lots
	// (e.g. rolls of cable); serialized units leave it at 1.
	Quantity decimal.Decimal `json:"quantity"`

	Status    enums.AssetStatus    `json:"status"`
	Condition enums.AssetCondition `json:"condition"`
	// CurrentUser is a staff name or a customer id; empty when unassigned.
	CurrentUser string `json:"currentUser,omitempty"`
	Location    string `json:"location,omitempty"`

	IsDismantled  bool           `json:"isDismantled,omitempty"`
	DismantleInfo *DismantleInfo `json:"dismantleInfo,omitempty"`

	ActivityLog []ActivityLogEntry `json:"activityLog"`
}

// DismantleInfo records how an asset came back from a customer.
type DismantleInfo struct {
	DocNumber  string    `json:"docNumber"`
	CustomerID string    `json:"customerId"`
	Technician string    `json:"technician,omitempty"`
	Date       time.Time `json:"date"`
}

// UnitQuantity returns the lot size, defaulting zero to one so serialized
// assets registered before the field existed still count as a single unit.
func (a Asset) UnitQuantity() decimal.Decimal {
	if a.Quantity.IsZero() {
		return decimal.NewFromInt(1)
	}
	return a.Quantity
}
