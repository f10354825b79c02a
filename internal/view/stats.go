// Package view holds the pure reductions each dashboard derives from a
// fetched collection, plus the per-row action bookkeeping. Nothing here
// touches the network or any global state.
package view

import "procurepay/internal/model"

// Stats summarizes one fetched collection of requests. Pending, Approved and
// Rejected partition the collection by status family, so they always sum to
// Total. Urgent is orthogonal: urgency-based, independent of status.
type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
	Urgent   int
}

// Summarize reduces requests to dashboard counts. Deterministic over the
// input slice; the input is not modified.
func Summarize(requests []model.Request) Stats {
	var s Stats
	s.Total = len(requests)
	for _, r := range requests {
		switch {
		case r.Status.IsPending():
			s.Pending++
		case r.Status.IsApprovedFamily():
			s.Approved++
		case r.Status.IsRejected():
			s.Rejected++
		}
		if r.IsUrgent() {
			s.Urgent++
		}
	}
	return s
}
