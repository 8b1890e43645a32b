package enums

import "fmt"

// ItemStatus is the shared document lifecycle used by procurement requests,
// handovers, dismantles and maintenance records. Procurement uses the full
// machine; the other document types use the in_progress/completed subset.
// Which transitions are legal for which workflow is owned by the workflow
// packages, not here.
type ItemStatus string

const (
	ItemStatusPending             ItemStatus = "pending"
	ItemStatusLogisticApproved    ItemStatus = "logistic_approved"
	ItemStatusAwaitingCEOApproval ItemStatus = "awaiting_ceo_approval"
	ItemStatusApproved            ItemStatus = "approved"
	ItemStatusPurchasing          ItemStatus = "purchasing"
	ItemStatusInDelivery          ItemStatus = "in_delivery"
	ItemStatusArrived             ItemStatus = "arrived"
	ItemStatusAwaitingHandover    ItemStatus = "awaiting_handover"
	ItemStatusInProgress          ItemStatus = "in_progress"
	ItemStatusCompleted           ItemStatus = "completed"
	ItemStatusRejected            ItemStatus = "rejected"
	ItemStatusCancelled           ItemStatus = "cancelled"
)

var validItemStatuses = []ItemStatus{
	ItemStatusPending,
	ItemStatusLogisticApproved,
	ItemStatusAwaitingCEOApproval,
	ItemStatusApproved,
	ItemStatusPurchasing,
	ItemStatusInDelivery,
	ItemStatusArrived,
	ItemStatusAwaitingHandover,
	ItemStatusInProgress,
	ItemStatusCompleted,
	ItemStatusRejected,
	ItemStatusCancelled,
}

// String implements fmt.Stringer.
func (i ItemStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ItemStatus.
func (i ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave the status.
func (i ItemStatus) IsTerminal() bool {
	switch i {
	case ItemStatusCompleted, ItemStatusRejected, ItemStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
