package travel

import "fmt"

// Status is the lifecycle state of a travel request.
type Status string

const (
	StatusSubmitted           Status = "submitted"
	StatusPMApproved          Status = "pm_approved"
	StatusPMRejected          Status = "pm_rejected"
	StatusOperationsCompleted Status = "operations_completed"
	StatusCancelled           Status = "cancelled"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{
	StatusSubmitted,
	StatusPMApproved,
	StatusPMRejected,
	StatusOperationsCompleted,
	StatusCancelled,
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusSubmitted, StatusPMApproved, StatusPMRejected, StatusOperationsCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusSubmitted:           {StatusPMApproved: true, StatusPMRejected: true, StatusCancelled: true},
	StatusPMApproved:          {StatusOperationsCompleted: true},
	StatusPMRejected:          {},
	StatusOperationsCompleted: {},
	StatusCancelled:           {},
}

// CanTransition reports whether a request may move directly from one status to another.
func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}
