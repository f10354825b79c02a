package stub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"procurepay/internal/model"
)

var (
	errUserExists       = errors.New("email already registered")
	errLevelDecided     = errors.New("this level has already been decided")
	errAlreadyValidated = errors.New("receipt already validated")
	errForbidden        = errors.New("operation not permitted for this role")
	errWrongPhase       = errors.New("request is not in the right status for this operation")
)

// Identity is the authenticated caller, extracted from the bearer token.
type Identity struct {
	UserID int64
	Name   string
	Role   model.Role
}

// Service enforces the lifecycle rules over a Store. Handlers stay thin.
type Service struct {
	store Store
	// l2Threshold is the amount above which a request needs a second review
	// level after level-1 approval.
	l2Threshold decimal.Decimal
}

// NewService wires the workflow rules over store.
func NewService(store Store, l2Threshold decimal.Decimal) *Service {
	return &Service{store: store, l2Threshold: l2Threshold}
}

// RegisterUser creates an account with a bcrypt-hashed password.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string, role model.Role) (*User, error) {
	switch role {
	case model.RoleStaff, model.RoleApproverL1, model.RoleApproverL2, model.RoleFinance, model.RoleAdmin:
	default:
		return nil, fmt.Errorf("invalid role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{Name: name, Email: email, PasswordHash: string(hash), Role: string(role)}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New("invalid email or password")
	}
	return u, nil
}

// CreateRequest stores a new request in the initial lifecycle phase.
func (s *Service) CreateRequest(ctx context.Context, who Identity, r *Request) (*Request, error) {
	r.Status = string(model.StatusPendingL1)
	r.CreatedBy = who.UserID
	r.CreatedByName = who.Name
	if err := s.store.CreateRequest(ctx, r); err != nil {
		return nil, err
	}
	return s.store.RequestByID(ctx, r.ID)
}

// UpdateRequest replaces descriptive fields. Only the creator (or admin),
// and only while the request is still pending level-1 review.
func (s *Service) UpdateRequest(ctx context.Context, who Identity, id int64, fields *Request) (*Request, error) {
	stored, err := s.store.RequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored.CreatedBy != who.UserID && who.Role != model.RoleAdmin {
		return nil, errForbidden
	}
	if !model.CanEdit(model.RoleStaff, model.Status(stored.Status)) {
		return nil, fmt.Errorf("%w: status is %s", errWrongPhase, stored.Status)
	}

	stored.Title = fields.Title
	stored.Description = fields.Description
	stored.Amount = fields.Amount
	stored.Quantity = fields.Quantity
	stored.Department = fields.Department
	stored.VendorName = fields.VendorName
	stored.Category = fields.Category
	stored.Urgency = fields.Urgency
	if fields.ProformaFile != "" {
		stored.ProformaFile = fields.ProformaFile
	}
	if err := s.store.UpdateRequest(ctx, stored); err != nil {
		return nil, err
	}
	return s.store.RequestByID(ctx, id)
}

// DeleteRequest removes a request, with the same gate as UpdateRequest.
func (s *Service) DeleteRequest(ctx context.Context, who Identity, id int64) error {
	stored, err := s.store.RequestByID(ctx, id)
	if err != nil {
		return err
	}
	if stored.CreatedBy != who.UserID && who.Role != model.RoleAdmin {
		return errForbidden
	}
	if !model.CanEdit(model.RoleStaff, model.Status(stored.Status)) {
		return fmt.Errorf("%w: status is %s", errWrongPhase, stored.Status)
	}
	return s.store.DeleteRequest(ctx, id)
}

// PendingFor returns the queue for an approver's level. Admin sees both.
func (s *Service) PendingFor(ctx context.Context, who Identity) ([]Request, error) {
	switch who.Role {
	case model.RoleApproverL1:
		return s.store.RequestsByStatus(ctx, model.StatusPendingL1)
	case model.RoleApproverL2:
		return s.store.RequestsByStatus(ctx, model.StatusPendingL2)
	case model.RoleAdmin:
		return s.store.RequestsByStatus(ctx, model.StatusPendingL1, model.StatusPendingL2)
	}
	return nil, errForbidden
}

// Decide records an approval or rejection at the caller's level and advances
// the lifecycle. A level-1 approval routes large amounts to level 2.
func (s *Service) Decide(ctx context.Context, who Identity, id int64, decision, comment string) (*Request, error) {
	stored, err := s.store.RequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status := model.Status(stored.Status)
	if !model.CanReview(who.Role, status) {
		return nil, errForbidden
	}
	level, ok := model.ApprovalLevelFor(status)
	if !ok {
		return nil, fmt.Errorf("%w: status is %s", errWrongPhase, stored.Status)
	}

	approval := &Approval{
		RequestID:    id,
		Level:        level,
		Approver:     who.UserID,
		ApproverName: who.Name,
		ApproverRole: string(who.Role),
		Decision:     decision,
		Comment:      comment,
		Date:         time.Now(),
	}
	if err := s.store.CreateApproval(ctx, approval); err != nil {
		return nil, err
	}

	switch {
	case decision == model.DecisionRejected && level == 1:
		stored.Status = string(model.StatusRejectedL1)
	case decision == model.DecisionRejected && level == 2:
		stored.Status = string(model.StatusRejectedL2)
	case level == 1 && stored.Amount.GreaterThan(s.l2Threshold):
		stored.Status = string(model.StatusPendingL2)
	default:
		stored.Status = string(model.StatusApproved)
	}
	if err := s.store.UpdateRequest(ctx, stored); err != nil {
		return nil, err
	}
	return s.store.RequestByID(ctx, id)
}

// financeStatuses are the phases visible in finance views.
var financeStatuses = []model.Status{
	model.StatusApproved,
	model.StatusOrdered,
	model.StatusDelivered,
	model.StatusCompleted,
}

// FinanceRequests lists everything approved and beyond.
func (s *Service) FinanceRequests(ctx context.Context) ([]Request, error) {
	return s.store.RequestsByStatus(ctx, financeStatuses...)
}

// PlaceOrder attaches the purchase-order file and moves approved -> ordered.
func (s *Service) PlaceOrder(ctx context.Context, who Identity, id int64, poFile string) (*Request, error) {
	return s.advance(ctx, who, id, model.StatusApproved, model.StatusOrdered, func(r *Request) {
		r.PurchaseOrderFile = poFile
	})
}

// UploadReceipt attaches the receipt file once ordering has happened.
func (s *Service) UploadReceipt(ctx context.Context, who Identity, id int64, receiptFile string) (*Request, error) {
	if who.Role != model.RoleFinance && who.Role != model.RoleAdmin {
		return nil, errForbidden
	}
	stored, err := s.store.RequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch model.Status(stored.Status) {
	case model.StatusOrdered, model.StatusDelivered, model.StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: status is %s", errWrongPhase, stored.Status)
	}
	stored.ReceiptFile = receiptFile
	if err := s.store.UpdateRequest(ctx, stored); err != nil {
		return nil, err
	}
	return s.store.RequestByID(ctx, id)
}

// ValidateReceipt records the goods-received confirmation and moves
// ordered -> delivered.
func (s *Service) ValidateReceipt(ctx context.Context, who Identity, id int64, status, comment string) (*Request, error) {
	switch status {
	case model.ReceiptReceived, model.ReceiptPartiallyReceived, model.ReceiptNotReceived:
	default:
		return nil, fmt.Errorf("invalid receipt status %q", status)
	}
	if !model.RoleCanTransition(who.Role, model.StatusOrdered, model.StatusDelivered) {
		return nil, errForbidden
	}
	stored, err := s.store.RequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.Status(stored.Status) != model.StatusOrdered {
		return nil, fmt.Errorf("%w: status is %s, want %s", errWrongPhase, stored.Status, model.StatusOrdered)
	}
	v := &ReceiptValidation{RequestID: id, Status: status, Comment: comment, Date: time.Now()}
	if err := s.store.CreateReceiptValidation(ctx, v); err != nil {
		return nil, err
	}
	stored.Status = string(model.StatusDelivered)
	if err := s.store.UpdateRequest(ctx, stored); err != nil {
		return nil, err
	}
	return s.store.RequestByID(ctx, id)
}

// Complete closes out a delivered request.
func (s *Service) Complete(ctx context.Context, who Identity, id int64) (*Request, error) {
	return s.advance(ctx, who, id, model.StatusDelivered, model.StatusCompleted, nil)
}

// advance performs one role-gated lifecycle edge with an optional mutation.
func (s *Service) advance(ctx context.Context, who Identity, id int64, from, to model.Status, mutate func(*Request)) (*Request, error) {
	if !model.RoleCanTransition(who.Role, from, to) {
		return nil, errForbidden
	}
	stored, err := s.store.RequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.Status(stored.Status) != from {
		return nil, fmt.Errorf("%w: status is %s, want %s", errWrongPhase, stored.Status, from)
	}
	if mutate != nil {
		mutate(stored)
	}
	stored.Status = string(to)
	if err := s.store.UpdateRequest(ctx, stored); err != nil {
		return nil, err
	}
	return s.store.RequestByID(ctx, id)
}
