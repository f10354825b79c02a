// Package stub implements an in-process ProcurePay backend speaking the same
// HTTP contract as the production service. It exists for local development
// and integration tests; it is not the production backend.
package stub

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"procurepay/internal/model"
)

// ErrNotFound is returned by stores for missing records.
var ErrNotFound = errors.New("record not found")

// User is a stub account record.
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"type:varchar(255);not null"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time
}

// Request is the stored form of a purchase request, with its approval
// history and optional receipt validation.
type Request struct {
	ID                int64           `gorm:"primaryKey;autoIncrement"`
	Title             string          `gorm:"type:varchar(255);not null"`
	Description       string          `gorm:"type:text;not null"`
	Amount            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity          int             `gorm:"not null"`
	Department        string          `gorm:"type:varchar(100)"`
	VendorName        string          `gorm:"type:varchar(255)"`
	Category          string          `gorm:"type:varchar(100)"`
	Urgency           string          `gorm:"type:varchar(20)"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
	CreatedBy         int64           `gorm:"not null;index"`
	CreatedByName     string          `gorm:"type:varchar(255)"`
	ProformaFile      string          `gorm:"type:varchar(512)"`
	ReceiptFile       string          `gorm:"type:varchar(512)"`
	PurchaseOrderFile string          `gorm:"type:varchar(512)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Approvals  []Approval         `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	Validation *ReceiptValidation `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

// Approval is one recorded decision, append-only, at most one per
// (request, level).
type Approval struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	RequestID    int64  `gorm:"not null;index:idx_approval_request_level,unique"`
	Level        int    `gorm:"not null;index:idx_approval_request_level,unique"`
	Approver     int64  `gorm:"not null;index"`
	ApproverName string `gorm:"type:varchar(255)"`
	ApproverRole string `gorm:"type:varchar(20)"`
	Decision     string `gorm:"type:varchar(10);not null"`
	Comment      string `gorm:"type:text"`
	Date         time.Time
}

// ReceiptValidation is finance's goods-received record, immutable once
// created.
type ReceiptValidation struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	RequestID int64  `gorm:"not null;uniqueIndex"`
	Status    string `gorm:"type:varchar(20);not null"`
	Comment   string `gorm:"type:text"`
	Date      time.Time
}

// Store is the persistence boundary. The in-memory implementation backs
// tests and zero-setup development; the gorm one backs a persistent stub.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)

	CreateRequest(ctx context.Context, r *Request) error
	RequestByID(ctx context.Context, id int64) (*Request, error)
	UpdateRequest(ctx context.Context, r *Request) error
	DeleteRequest(ctx context.Context, id int64) error

	RequestsByCreator(ctx context.Context, userID int64) ([]Request, error)
	RequestsByStatus(ctx context.Context, statuses ...model.Status) ([]Request, error)
	RequestsReviewedBy(ctx context.Context, approverID int64) ([]Request, error)
	RequestsWithPurchaseOrder(ctx context.Context) ([]Request, error)

	CreateApproval(ctx context.Context, a *Approval) error
	CreateReceiptValidation(ctx context.Context, v *ReceiptValidation) error
}

// toWire converts a stored request to the JSON shape the client consumes.
func toWire(r Request) model.Request {
	out := model.Request{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		Amount:            model.AmountFromDecimal(r.Amount),
		Quantity:          r.Quantity,
		Department:        r.Department,
		VendorName:        r.VendorName,
		Category:          r.Category,
		Urgency:           r.Urgency,
		Status:            model.Status(r.Status),
		CreatedBy:         r.CreatedBy,
		CreatedByName:     r.CreatedByName,
		ProformaFile:      r.ProformaFile,
		ReceiptFile:       r.ReceiptFile,
		PurchaseOrderFile: r.PurchaseOrderFile,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	for _, a := range r.Approvals {
		out.Approvals = append(out.Approvals, model.Approval{
			ID:           a.ID,
			Approver:     a.Approver,
			ApproverName: a.ApproverName,
			ApproverRole: a.ApproverRole,
			Level:        a.Level,
			Decision:     a.Decision,
			Comment:      a.Comment,
			Date:         a.Date,
		})
	}
	if r.Validation != nil {
		out.ReceiptValidation = &model.ReceiptValidation{
			Status:  r.Validation.Status,
			Comment: r.Validation.Comment,
			Date:    r.Validation.Date,
		}
	}
	return out
}

func toWireList(records []Request) []model.Request {
	out := make([]model.Request, 0, len(records))
	for _, r := range records {
		out = append(out, toWire(r))
	}
	return out
}
