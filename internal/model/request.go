package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Urgency enum constants
const (
	UrgencyLow      = "low"
	UrgencyNormal   = "normal"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// UrgentAmountThreshold is the amount above which a high-urgency request
// counts as urgent in dashboard stats.
var UrgentAmountThreshold = decimal.NewFromInt(5000)

// Request is the central entity: one staff purchase request moving through
// the lifecycle. Field names mirror the backend's JSON exactly; the amount
// arrives as a decimal-formatted string and is kept as decimal.Decimal.
type Request struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Amount        Amount    `json:"amount"`
	Quantity      int       `json:"quantity"`
	Department    string    `json:"department"`
	VendorName    string    `json:"vendor_name"`
	Category      string    `json:"category"`
	Urgency       string    `json:"urgency"`
	Status        Status    `json:"status"`
	CreatedBy     int64     `json:"created_by"`
	CreatedByName string    `json:"created_by_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Attachment references, set by the backend as the request moves through
	// its phases. Empty string means absent.
	ProformaFile      string `json:"proforma_file,omitempty"`
	ReceiptFile       string `json:"receipt_file,omitempty"`
	PurchaseOrderFile string `json:"purchase_order_file,omitempty"`

	// Nested relations, present on detail and finance views.
	Approvals         []Approval         `json:"approvals,omitempty"`
	ReceiptValidation *ReceiptValidation `json:"receipt_validation,omitempty"`
}

// PONumber returns the derived purchase-order identifier, or "" when no
// purchase order has been placed yet.
func (r Request) PONumber() string {
	if r.PurchaseOrderFile == "" {
		return ""
	}
	return fmt.Sprintf("PO-%d", r.ID)
}

// IsUrgent reports whether the request should be flagged urgent: critical
// urgency always, high urgency only when the amount exceeds the threshold.
// Computed independent of status.
func (r Request) IsUrgent() bool {
	switch r.Urgency {
	case UrgencyCritical:
		return true
	case UrgencyHigh:
		return r.Amount.Decimal().GreaterThan(UrgentAmountThreshold)
	}
	return false
}

// HasProforma reports whether a proforma invoice is attached.
func (r Request) HasProforma() bool { return r.ProformaFile != "" }

// HasReceipt reports whether a goods receipt is attached.
func (r Request) HasReceipt() bool { return r.ReceiptFile != "" }

// HasPurchaseOrder reports whether a purchase-order file is attached.
func (r Request) HasPurchaseOrder() bool { return r.PurchaseOrderFile != "" }

// Decision values recorded on an Approval.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Approval is one approver's recorded decision at a given level. Approvals
// are append-only: the backend never edits or deletes them, and records at
// most one per (request, level).
type Approval struct {
	ID           int64     `json:"id"`
	Approver     int64     `json:"approver"`
	ApproverName string    `json:"approver_name"`
	ApproverRole string    `json:"approver_role"`
	Level        int       `json:"level"`
	Decision     string    `json:"status"`
	Comment      string    `json:"comment"`
	Date         time.Time `json:"date"`
}

// ReceiptValidation statuses recorded by finance.
const (
	ReceiptReceived          = "received"
	ReceiptPartiallyReceived = "partially_received"
	ReceiptNotReceived       = "not_received"
)

// ReceiptValidation is finance's confirmation of goods received. At most one
// per request, immutable once created.
type ReceiptValidation struct {
	Status  string    `json:"status"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}
