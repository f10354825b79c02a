package model

import "fmt"

// Status is the lifecycle phase of a purchase request. The set is closed:
// the backend owns every transition, the client only renders whatever value
// comes back and gates its buttons with RoleCanTransition.
type Status string

const (
	StatusPendingL1  Status = "pending_l1"
	StatusRejectedL1 Status = "rejected_l1"
	StatusPendingL2  Status = "pending_l2"
	StatusRejectedL2 Status = "rejected_l2"
	StatusApproved   Status = "approved"
	StatusOrdered    Status = "ordered"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
)

// AllStatuses lists every known status in lifecycle order.
var AllStatuses = []Status{
	StatusPendingL1,
	StatusRejectedL1,
	StatusPendingL2,
	StatusRejectedL2,
	StatusApproved,
	StatusOrdered,
	StatusDelivered,
	StatusCompleted,
}

// Role identifies who the current session acts as.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleApproverL1 Role = "approver1"
	RoleApproverL2 Role = "approver2"
	RoleFinance    Role = "finance"
	RoleAdmin      Role = "admin"
)

// Color is the semantic color category a renderer maps to its own palette.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
)

// Facts bundles the derived presentation facts for one status.
type Facts struct {
	Label       string
	Description string
	Progress    int // 0..100, non-decreasing along legal transitions
	Color       Color
}

var statusFacts = map[Status]Facts{
	StatusPendingL1: {
		Label:       "Pending L1",
		Description: "Your request is waiting for Level 1 approver review.",
		Progress:    20,
		Color:       ColorYellow,
	},
	StatusRejectedL1: {
		Label:       "Rejected L1",
		Description: "Your request was rejected by the Level 1 approver.",
		Progress:    20,
		Color:       ColorRed,
	},
	StatusPendingL2: {
		Label:       "Pending L2",
		Description: "Your request passed Level 1 and is now waiting for Level 2 approval.",
		Progress:    50,
		Color:       ColorYellow,
	},
	StatusRejectedL2: {
		Label:       "Rejected L2",
		Description: "Your request was rejected by the Level 2 approver.",
		Progress:    50,
		Color:       ColorRed,
	},
	StatusApproved: {
		Label:       "Approved",
		Description: "Your request has been approved and is ready for ordering.",
		Progress:    75,
		Color:       ColorGreen,
	},
	StatusOrdered: {
		Label:       "Ordered",
		Description: "Purchase order has been placed with the vendor.",
		Progress:    85,
		Color:       ColorBlue,
	},
	StatusDelivered: {
		Label:       "Delivered",
		Description: "Items have been delivered and are being validated.",
		Progress:    95,
		Color:       ColorBlue,
	},
	StatusCompleted: {
		Label:       "Completed",
		Description: "Request is fully completed and closed.",
		Progress:    100,
		Color:       ColorGreen,
	},
}

// UnknownFacts is the forward-compatibility placeholder returned by
// FactsOrUnknown when the server sends a status this build does not know.
var UnknownFacts = Facts{
	Label:       "Unknown",
	Description: "Status description not available.",
	Progress:    0,
	Color:       ColorBlue,
}

// Valid reports whether s is one of the eight known statuses.
func (s Status) Valid() bool {
	_, ok := statusFacts[s]
	return ok
}

// FactsFor returns the derived presentation facts for s, failing loudly on a
// value outside the known set.
func FactsFor(s Status) (Facts, error) {
	f, ok := statusFacts[s]
	if !ok {
		return Facts{}, fmt.Errorf("unknown request status %q", s)
	}
	return f, nil
}

// FactsOrUnknown is the lenient variant for rendering paths that must not
// break when the server adds a ninth status.
func FactsOrUnknown(s Status) Facts {
	if f, ok := statusFacts[s]; ok {
		return f
	}
	return UnknownFacts
}

// IsPending reports whether s is waiting on an approver.
func (s Status) IsPending() bool {
	return s == StatusPendingL1 || s == StatusPendingL2
}

// IsRejected reports whether s is one of the two rejection dead ends.
func (s Status) IsRejected() bool {
	return s == StatusRejectedL1 || s == StatusRejectedL2
}

// IsApprovedFamily reports whether s has passed both review levels.
func (s Status) IsApprovedFamily() bool {
	switch s {
	case StatusApproved, StatusOrdered, StatusDelivered, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can occur from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejectedL1, StatusRejectedL2, StatusCompleted:
		return true
	}
	return false
}

// transitions maps each status to the statuses the backend may legally move
// it to. The client never drives a transition itself; this graph backs the
// advisory button gating only.
var transitions = map[Status][]Status{
	StatusPendingL1: {StatusApproved, StatusPendingL2, StatusRejectedL1},
	StatusPendingL2: {StatusApproved, StatusRejectedL2},
	StatusApproved:  {StatusOrdered},
	StatusOrdered:   {StatusDelivered},
	StatusDelivered: {StatusCompleted},
}

// NextStatuses returns the statuses reachable from s in one legal transition.
func NextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// transitionRole returns the role that owns transitions out of a status.
func transitionRole(from Status) (Role, bool) {
	switch from {
	case StatusPendingL1:
		return RoleApproverL1, true
	case StatusPendingL2:
		return RoleApproverL2, true
	case StatusApproved, StatusOrdered, StatusDelivered:
		return RoleFinance, true
	}
	return "", false
}

// RoleCanTransition reports whether role is authorized to cause from -> to.
// Admin passes every gate. This is advisory UX only; the backend holds the
// authoritative check.
func RoleCanTransition(role Role, from, to Status) bool {
	if !CanTransition(from, to) {
		return false
	}
	if role == RoleAdmin {
		return true
	}
	owner, ok := transitionRole(from)
	return ok && role == owner
}

// CanReview reports whether role may approve or reject a request currently in
// status s.
func CanReview(role Role, s Status) bool {
	switch s {
	case StatusPendingL1:
		return role == RoleApproverL1 || role == RoleAdmin
	case StatusPendingL2:
		return role == RoleApproverL2 || role == RoleAdmin
	}
	return false
}

// CanEdit reports whether role may still mutate the request's descriptive
// fields (or delete it). Only the originating staff member, and only before
// any review has happened.
func CanEdit(role Role, s Status) bool {
	if role != RoleStaff && role != RoleAdmin {
		return false
	}
	return s == StatusPendingL1
}

// ApprovalLevelFor returns the review level deciding a request in status s.
func ApprovalLevelFor(s Status) (int, bool) {
	switch s {
	case StatusPendingL1:
		return 1, true
	case StatusPendingL2:
		return 2, true
	}
	return 0, false
}
