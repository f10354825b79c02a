package view

import (
	"strings"

	"procurepay/internal/model"
)

// StatusAll is the status filter value that passes every request.
const StatusAll = "all"

// Document filter selections for the finance documents view.
const (
	DocumentsAll      = "all"
	DocumentsMissing  = "missing-receipt"
	DocumentsPresent  = "has-receipt"
	DocumentsComplete = "complete"
)

// Filter returns the requests matching the free-text query AND the status
// selection. The query matches case-insensitively against title, requester
// name and the derived PO number. Order-preserving and pure: the input slice
// is never modified, and relative order of matches is unchanged.
func Filter(requests []model.Request, query, status string) []model.Request {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Request, 0, len(requests))
	for _, r := range requests {
		if query != "" && !matchesQuery(r, query) {
			continue
		}
		if status != StatusAll && status != "" && string(r.Status) != status {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesQuery(r model.Request, query string) bool {
	if strings.Contains(strings.ToLower(r.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.CreatedByName), query) {
		return true
	}
	if po := r.PONumber(); po != "" && strings.Contains(strings.ToLower(po), query) {
		return true
	}
	return false
}

// FilterDocuments narrows a finance collection by document completeness on
// top of the free-text query.
func FilterDocuments(requests []model.Request, query, selection string) []model.Request {
	out := Filter(requests, query, StatusAll)
	if selection == DocumentsAll || selection == "" {
		return out
	}
	kept := out[:0]
	for _, r := range out {
		switch selection {
		case DocumentsMissing:
			if !r.HasReceipt() {
				kept = append(kept, r)
			}
		case DocumentsPresent:
			if r.HasReceipt() {
				kept = append(kept, r)
			}
		case DocumentsComplete:
			if r.HasProforma() && r.HasReceipt() && r.HasPurchaseOrder() {
				kept = append(kept, r)
			}
		}
	}
	return kept
}

// DocumentState names the attachments present on a request, e.g.
// "Proforma, PO", "Complete" or "None".
func DocumentState(r model.Request) string {
	var docs []string
	if r.HasProforma() {
		docs = append(docs, "Proforma")
	}
	if r.HasReceipt() {
		docs = append(docs, "Receipt")
	}
	if r.HasPurchaseOrder() {
		docs = append(docs, "PO")
	}
	switch len(docs) {
	case 3:
		return "Complete"
	case 0:
		return "None"
	}
	return strings.Join(docs, ", ")
}
