package stub

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"procurepay/internal/model"
)

var (
	staff     = Identity{UserID: 1, Name: "Sam Staff", Role: model.RoleStaff}
	reviewer1 = Identity{UserID: 2, Name: "Ana Approver", Role: model.RoleApproverL1}
	reviewer2 = Identity{UserID: 3, Name: "Ben Approver", Role: model.RoleApproverL2}
	treasurer = Identity{UserID: 4, Name: "Fay Finance", Role: model.RoleFinance}
)

func newTestService() *Service {
	return NewService(NewMemStore(), decimal.NewFromInt(1000))
}

func mustCreate(t *testing.T, svc *Service, amount string) *Request {
	t.Helper()
	r, err := svc.CreateRequest(context.Background(), staff, &Request{
		Title:        "Laptops",
		Description:  "Replacement hardware for the support desk",
		Amount:       decimal.RequireFromString(amount),
		Quantity:     2,
		Department:   "IT",
		VendorName:   "Compute Inc",
		Category:     "hardware",
		Urgency:      model.UrgencyNormal,
		ProformaFile: "/media/proforma.pdf",
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if r.Status != string(model.StatusPendingL1) {
		t.Fatalf("new request status = %s, want %s", r.Status, model.StatusPendingL1)
	}
	return r
}

func TestLifecycleSmallAmountSkipsLevelTwo(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	r := mustCreate(t, svc, "500.00")

	r, err := svc.Decide(ctx, reviewer1, r.ID, model.DecisionApproved, "fine")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if r.Status != string(model.StatusApproved) {
		t.Fatalf("after L1 approval status = %s, want %s", r.Status, model.StatusApproved)
	}
	if len(r.Approvals) != 1 || r.Approvals[0].Level != 1 {
		t.Fatalf("approvals = %+v, want one level-1 record", r.Approvals)
	}

	r, err = svc.PlaceOrder(ctx, treasurer, r.ID, "/media/po.pdf")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if r.Status != string(model.StatusOrdered) || r.PurchaseOrderFile != "/media/po.pdf" {
		t.Fatalf("after PlaceOrder: status=%s po=%q", r.Status, r.PurchaseOrderFile)
	}

	if _, err := svc.UploadReceipt(ctx, treasurer, r.ID, "/media/receipt.pdf"); err != nil {
		t.Fatalf("UploadReceipt: %v", err)
	}

	r, err = svc.ValidateReceipt(ctx, treasurer, r.ID, model.ReceiptReceived, "all there")
	if err != nil {
		t.Fatalf("ValidateReceipt: %v", err)
	}
	if r.Status != string(model.StatusDelivered) {
		t.Fatalf("after validation status = %s, want %s", r.Status, model.StatusDelivered)
	}
	if r.Validation == nil || r.Validation.Status != model.ReceiptReceived {
		t.Fatalf("validation not recorded: %+v", r.Validation)
	}

	r, err = svc.Complete(ctx, treasurer, r.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if r.Status != string(model.StatusCompleted) {
		t.Fatalf("final status = %s, want %s", r.Status, model.StatusCompleted)
	}
}

func TestLifecycleLargeAmountNeedsBothLevels(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	r := mustCreate(t, svc, "5000.00")

	r, err := svc.Decide(ctx, reviewer1, r.ID, model.DecisionApproved, "")
	if err != nil {
		t.Fatalf("L1 Decide: %v", err)
	}
	if r.Status != string(model.StatusPendingL2) {
		t.Fatalf("after L1 approval status = %s, want %s", r.Status, model.StatusPendingL2)
	}

	// The level-1 reviewer cannot touch it again in this phase.
	if _, err := svc.Decide(ctx, reviewer1, r.ID, model.DecisionApproved, ""); !errors.Is(err, errForbidden) {
		t.Fatalf("L1 re-decide err = %v, want errForbidden", err)
	}

	r, err = svc.Decide(ctx, reviewer2, r.ID, model.DecisionApproved, "")
	if err != nil {
		t.Fatalf("L2 Decide: %v", err)
	}
	if r.Status != string(model.StatusApproved) {
		t.Fatalf("after L2 approval status = %s, want %s", r.Status, model.StatusApproved)
	}
	if len(r.Approvals) != 2 {
		t.Fatalf("approvals = %d, want 2", len(r.Approvals))
	}
}

func TestRejection(t *testing.T) {
	cases := []struct {
		name    string
		amount  string
		firstBy Identity
		want    model.Status
	}{
		{"level one", "400.00", reviewer1, model.StatusRejectedL1},
		{"level two", "4000.00", reviewer1, model.StatusPendingL2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService()
			ctx := context.Background()
			r := mustCreate(t, svc, tc.amount)

			if tc.want == model.StatusRejectedL1 {
				r, err := svc.Decide(ctx, tc.firstBy, r.ID, model.DecisionRejected, "too pricey")
				if err != nil {
					t.Fatalf("Decide: %v", err)
				}
				if r.Status != string(model.StatusRejectedL1) {
					t.Fatalf("status = %s, want %s", r.Status, model.StatusRejectedL1)
				}
				return
			}

			if _, err := svc.Decide(ctx, reviewer1, r.ID, model.DecisionApproved, ""); err != nil {
				t.Fatalf("L1 Decide: %v", err)
			}
			got, err := svc.Decide(ctx, reviewer2, r.ID, model.DecisionRejected, "budget")
			if err != nil {
				t.Fatalf("L2 Decide: %v", err)
			}
			if got.Status != string(model.StatusRejectedL2) {
				t.Fatalf("status = %s, want %s", got.Status, model.StatusRejectedL2)
			}
		})
	}
}

func TestOneDecisionPerLevel(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	if err := store.CreateRequest(ctx, &Request{Title: "x", Status: string(model.StatusPendingL1)}); err != nil {
		t.Fatal(err)
	}
	first := &Approval{RequestID: 1, Level: 1, Approver: 2, Decision: model.DecisionApproved}
	if err := store.CreateApproval(ctx, first); err != nil {
		t.Fatalf("first approval: %v", err)
	}
	dup := &Approval{RequestID: 1, Level: 1, Approver: 9, Decision: model.DecisionRejected}
	if err := store.CreateApproval(ctx, dup); !errors.Is(err, errLevelDecided) {
		t.Fatalf("duplicate approval err = %v, want errLevelDecided", err)
	}
}

func TestEditOnlyWhilePendingLevelOne(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	r := mustCreate(t, svc, "500.00")

	stranger := Identity{UserID: 99, Name: "Other", Role: model.RoleStaff}
	if _, err := svc.UpdateRequest(ctx, stranger, r.ID, &Request{Title: "hijack"}); !errors.Is(err, errForbidden) {
		t.Fatalf("stranger update err = %v, want errForbidden", err)
	}

	updated, err := svc.UpdateRequest(ctx, staff, r.ID, &Request{
		Title: "Laptops v2", Description: "Now with docks included here",
		Amount: decimal.RequireFromString("600.00"), Quantity: 2,
		Department: "IT", VendorName: "Compute Inc", Category: "hardware",
		Urgency: model.UrgencyHigh,
	})
	if err != nil {
		t.Fatalf("UpdateRequest: %v", err)
	}
	if updated.Title != "Laptops v2" || updated.ProformaFile != "/media/proforma.pdf" {
		t.Fatalf("update lost fields: title=%q proforma=%q", updated.Title, updated.ProformaFile)
	}

	if _, err := svc.Decide(ctx, reviewer1, r.ID, model.DecisionApproved, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateRequest(ctx, staff, r.ID, &Request{Title: "late"}); !errors.Is(err, errWrongPhase) {
		t.Fatalf("post-approval update err = %v, want errWrongPhase", err)
	}
	if err := svc.DeleteRequest(ctx, staff, r.ID); !errors.Is(err, errWrongPhase) {
		t.Fatalf("post-approval delete err = %v, want errWrongPhase", err)
	}
}

func TestDeleteWhilePending(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	r := mustCreate(t, svc, "500.00")
	if err := svc.DeleteRequest(ctx, staff, r.ID); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}
	if _, err := svc.store.RequestByID(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lookup after delete err = %v, want ErrNotFound", err)
	}
}

func TestPendingForRoles(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	small := mustCreate(t, svc, "200.00")
	big := mustCreate(t, svc, "2000.00")
	if _, err := svc.Decide(ctx, reviewer1, big.ID, model.DecisionApproved, ""); err != nil {
		t.Fatal(err)
	}

	l1, err := svc.PendingFor(ctx, reviewer1)
	if err != nil {
		t.Fatalf("PendingFor L1: %v", err)
	}
	if len(l1) != 1 || l1[0].ID != small.ID {
		t.Fatalf("L1 queue = %+v, want only request %d", l1, small.ID)
	}

	l2, err := svc.PendingFor(ctx, reviewer2)
	if err != nil {
		t.Fatalf("PendingFor L2: %v", err)
	}
	if len(l2) != 1 || l2[0].ID != big.ID {
		t.Fatalf("L2 queue = %+v, want only request %d", l2, big.ID)
	}

	if _, err := svc.PendingFor(ctx, staff); !errors.Is(err, errForbidden) {
		t.Fatalf("staff PendingFor err = %v, want errForbidden", err)
	}
}

func TestFinancePhaseGates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	r := mustCreate(t, svc, "500.00")

	// Not approved yet: nothing in the finance pipeline may touch it.
	if _, err := svc.PlaceOrder(ctx, treasurer, r.ID, "/media/po.pdf"); !errors.Is(err, errWrongPhase) {
		t.Fatalf("premature PlaceOrder err = %v, want errWrongPhase", err)
	}
	if _, err := svc.UploadReceipt(ctx, treasurer, r.ID, "/media/r.pdf"); !errors.Is(err, errWrongPhase) {
		t.Fatalf("premature UploadReceipt err = %v, want errWrongPhase", err)
	}
	if _, err := svc.ValidateReceipt(ctx, treasurer, r.ID, model.ReceiptReceived, ""); !errors.Is(err, errWrongPhase) {
		t.Fatalf("premature ValidateReceipt err = %v, want errWrongPhase", err)
	}

	if _, err := svc.Decide(ctx, reviewer1, r.ID, model.DecisionApproved, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PlaceOrder(ctx, staff, r.ID, "/media/po.pdf"); !errors.Is(err, errForbidden) {
		t.Fatalf("staff PlaceOrder err = %v, want errForbidden", err)
	}
	if _, err := svc.PlaceOrder(ctx, treasurer, r.ID, "/media/po.pdf"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ValidateReceipt(ctx, treasurer, r.ID, "vanished", ""); err == nil {
		t.Fatal("expected an error for an unknown receipt status")
	}
	if _, err := svc.ValidateReceipt(ctx, treasurer, r.ID, model.ReceiptPartiallyReceived, "one box short"); err != nil {
		t.Fatal(err)
	}
	// Delivered now, so a second validation is out of phase.
	if _, err := svc.ValidateReceipt(ctx, treasurer, r.ID, model.ReceiptReceived, ""); !errors.Is(err, errWrongPhase) {
		t.Fatalf("second ValidateReceipt err = %v, want errWrongPhase", err)
	}

	finance, err := svc.FinanceRequests(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(finance) != 1 || finance[0].Status != string(model.StatusDelivered) {
		t.Fatalf("finance view = %+v, want the delivered request", finance)
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, "Sam", "sam@corp.test", "hunter22", "janitor"); err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
	u, err := svc.RegisterUser(ctx, "Sam", "sam@corp.test", "hunter22", model.RoleStaff)
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if u.PasswordHash == "hunter22" {
		t.Fatal("password stored in the clear")
	}
	if _, err := svc.RegisterUser(ctx, "Sam2", "sam@corp.test", "other", model.RoleStaff); !errors.Is(err, errUserExists) {
		t.Fatalf("duplicate email err = %v, want errUserExists", err)
	}

	if _, err := svc.Authenticate(ctx, "sam@corp.test", "wrong"); err == nil {
		t.Fatal("expected bad password to fail")
	}
	got, err := svc.Authenticate(ctx, "sam@corp.test", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated id = %d, want %d", got.ID, u.ID)
	}
}
