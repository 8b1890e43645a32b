package models

import (
	"time"

	"github.com/satrianet/inventaris-backend/pkg/enums"
)

// LoanRequest is a temporary-use ask. Concrete in-storage assets are bound to
// the abstract line items at approval time; they only move to in_use when the
// paired handover completes.
type LoanRequest struct {
	ID            string           `json:"id"`
	RequestDate   time.Time        `json:"requestDate"`
	RequesterName string           `json:"requesterName"`
	Items         []LoanItem       `json:"items"`
	Status        enums.LoanStatus `json:"status"`
	Notes         string           `json:"notes,omitempty"`

	Approver     string     `json:"approver,omitempty"`
	ApprovalDate *time.Time `json:"approvalDate,omitempty"`

	// AssignedAssetIDs maps loan item id to the concrete asset ids bound at
	// approval. Ids are unique across the whole map: an asset is never
	// double-booked within one loan.
	AssignedAssetIDs map[string][]string `json:"assignedAssetIds,omitempty"`

	RejectedBy      string `json:"rejectedBy,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`

	ReturnConfirmedBy   string     `json:"returnConfirmedBy,omitempty"`
	ReturnConfirmedDate *time.Time `json:"returnConfirmedDate,omitempty"`
}

// LoanItem is one requested model + quantity with its promised return date.
type LoanItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand"`
	Quantity   int       `json:"quantity"`
	ReturnDate time.Time `json:"returnDate"`
}

// AllAssignedAssetIDs flattens the assignment map in stable item order.
func (l LoanRequest) AllAssignedAssetIDs() []string {
	var ids []string
	for _, item := range l.Items {
		ids = append(ids, l.AssignedAssetIDs[item.ID]...)
	}
	return ids
}

// EarliestReturnDate is the first promised return date across the items.
func (l LoanRequest) EarliestReturnDate() time.Time {
	var earliest time.Time
	for _, item := range l.Items {
		if earliest.IsZero() || item.ReturnDate.Before(earliest) {
			earliest = item.ReturnDate
		}
	}
	return earliest
}

// EffectiveStatus overlays the derived overdue state: a loan still out past
// its earliest promised return date reads as overdue without being stored so.
func (l LoanRequest) EffectiveStatus(now time.Time) enums.LoanStatus {
	if l.Status == enums.LoanStatusOnLoan {
		if due := l.EarliestReturnDate(); !due.IsZero() && due.Before(now) {
			return enums.LoanStatusOverdue
		}
	}
	return l.Status
}
