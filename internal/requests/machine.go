package requests

import (
	"github.com/satrianet/inventaris-backend/pkg/enums"
	pkgerrors "github.com/satrianet/inventaris-backend/pkg/errors"
)

// transitions is the full legal-transition table of the procurement machine.
// Rejection and cancellation are handled as an overlay: legal from any
// non-terminal state, so they do not appear per-row.
var transitions = map[enums.ItemStatus][]enums.ItemStatus{
	enums.ItemStatusPending:             {enums.ItemStatusLogisticApproved, enums.ItemStatusAwaitingCEOApproval},
	enums.ItemStatusLogisticApproved:    {enums.ItemStatusApproved},
	enums.ItemStatusAwaitingCEOApproval: {enums.ItemStatusApproved},
	enums.ItemStatusApproved:            {enums.ItemStatusPurchasing},
	enums.ItemStatusPurchasing:          {enums.ItemStatusInDelivery, enums.ItemStatusArrived},
	enums.ItemStatusInDelivery:          {enums.ItemStatusArrived},
	enums.ItemStatusArrived:             {enums.ItemStatusAwaitingHandover, enums.ItemStatusCompleted},
	enums.ItemStatusAwaitingHandover:    {enums.ItemStatusCompleted},
}

// CanTransition reports whether the procurement machine allows from → to.
func CanTransition(from, to enums.ItemStatus) bool {
	if to == enums.ItemStatusRejected || to == enums.ItemStatusCancelled {
		return !from.IsTerminal()
	}
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// transition validates and performs a status move, or returns the uniform
// state-conflict error naming both states.
func transition(current enums.ItemStatus, to enums.ItemStatus) (enums.ItemStatus, error) {
	if !CanTransition(current, to) {
		return current, pkgerrors.New(pkgerrors.CodeStateConflict, "request cannot move from "+current.String()+" to "+to.String())
	}
	return to, nil
}
