package enums

import "fmt"

// LoanStatus tracks the lifecycle of a temporary equipment loan.
//
// LoanStatusOverdue is a derived overlay: it is reported for loans still
// on_loan past their requested return date but is never stored.
type LoanStatus string

const (
	LoanStatusPending        LoanStatus = "pending"
	LoanStatusApproved       LoanStatus = "approved"
	LoanStatusOnLoan         LoanStatus = "on_loan"
	LoanStatusAwaitingReturn LoanStatus = "awaiting_return"
	LoanStatusReturned       LoanStatus = "returned"
	LoanStatusRejected       LoanStatus = "rejected"
	LoanStatusOverdue        LoanStatus = "overdue"
)

var validLoanStatuses = []LoanStatus{
	LoanStatusPending,
	LoanStatusApproved,
	LoanStatusOnLoan,
	LoanStatusAwaitingReturn,
	LoanStatusReturned,
	LoanStatusRejected,
	LoanStatusOverdue,
}

// storedLoanTransitions is the legal-transition table for persisted statuses.
// Overdue never appears: it overlays on_loan at read time.
var storedLoanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusPending:        {LoanStatusApproved, LoanStatusRejected},
	LoanStatusApproved:       {LoanStatusOnLoan},
	LoanStatusOnLoan:         {LoanStatusAwaitingReturn, LoanStatusReturned},
	LoanStatusAwaitingReturn: {LoanStatusReturned},
}

// String implements fmt.Stringer.
func (l LoanStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LoanStatus.
func (l LoanStatus) IsValid() bool {
	for _, candidate := range validLoanStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave the status.
func (l LoanStatus) IsTerminal() bool {
	return l == LoanStatusReturned || l == LoanStatusRejected
}

// CanTransition reports whether a stored status may move to the target.
func (l LoanStatus) CanTransition(to LoanStatus) bool {
	for _, candidate := range storedLoanTransitions[l] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ParseLoanStatus converts raw input into a LoanStatus.
func ParseLoanStatus(value string) (LoanStatus, error) {
	for _, candidate := range validLoanStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loan status %q", value)
}
