package models

import (
	"time"

	"github.com/satrianet/inventaris-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Request is a procurement ask moving through the approval machine. One
// request spawns N assets (summed item quantities) once arrived and
// registered.
type Request struct {
	ID            string           `json:"id"`
	RequestDate   time.Time        `json:"requestDate"`
	RequesterName string           `json:"requesterName"`
	Division      string           `json:"division,omitempty"`
	Items         []RequestItem    `json:"items"`
	Status        enums.ItemStatus `json:"status"`
	Notes         string           `json:"notes,omitempty"`

	LogisticApprover     string     `json:"logisticApprover,omitempty"`
	LogisticApprovalDate *time.Time `json:"logisticApprovalDate,omitempty"`
	FinalApprover        string     `json:"finalApprover,omitempty"`
	FinalApprovalDate    *time.Time `json:"finalApprovalDate,omitempty"`

	RejectedBy       string     `json:"rejectedBy,omitempty"`
	RejectedDivision string     `json:"rejectedDivision,omitempty"`
	RejectionDate    *time.Time `json:"rejectionDate,omitempty"`
	RejectionReason  string     `json:"rejectionReason,omitempty"`

	ReceivedBy  string     `json:"receivedBy,omitempty"`
	ArrivalDate *time.Time `json:"arrivalDate,omitempty"`

	IsRegistered bool `json:"isRegistered,omitempty"`
	// PartiallyRegisteredItems keys the registration of each item so a second
	// RegisterAssets call never double-creates stock.
	PartiallyRegisteredItems map[string]bool `json:"partiallyRegisteredItems,omitempty"`
}

// RequestItem is one desired model + quantity line.
type RequestItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category,omitempty"`
	Type     string `json:"type,omitempty"`
	Quantity int    `json:"quantity"`
	// ApprovedQuantity is set when approval trims the ask; registration falls
	// back to Quantity when it is nil.
	ApprovedQuantity *int             `json:"approvedQuantity,omitempty"`
	EstimatedPrice   decimal.Decimal  `json:"estimatedPrice"`
	PurchaseDetails  *PurchaseDetails `json:"purchaseDetails,omitempty"`
}

// PurchaseDetails is the commercial record attached per item once purchasing
// happens. PurchasePrice is the line total, not per unit.
type PurchaseDetails struct {
	PurchasePrice   decimal.Decimal `json:"purchasePrice"`
	Vendor          string          `json:"vendor,omitempty"`
	PONumber        string          `json:"poNumber,omitempty"`
	InvoiceNumber   string          `json:"invoiceNumber,omitempty"`
	WarrantyEndDate *time.Time      `json:"warrantyEndDate,omitempty"`
}

// RegisterQuantity is the unit count registration will create for the item.
func (i RequestItem) RegisterQuantity() int {
	if i.ApprovedQuantity != nil {
		return *i.ApprovedQuantity
	}
	return i.Quantity
}

// OrderTotal sums the estimated line totals, the figure approval policy
// compares against the escalation threshold.
func (r Request) OrderTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.EstimatedPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Item returns the line with the given id, or nil.
func (r *Request) Item(itemID string) *RequestItem {
	for idx := range r.Items {
		if r.Items[idx].ID == itemID {
			return &r.Items[idx]
		}
	}
	return nil
}
