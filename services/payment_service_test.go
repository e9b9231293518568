package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage/memstore"
)

func newTestPaymentService(t *testing.T) (*PaymentService, *models.Group, []primitive.ObjectID) {
	t.Helper()
	store := memstore.New()
	groupSvc := NewGroupService(store, store, store)
	group, users := fillGroup(t, groupSvc, 5000, models.PlanWeekly, 3)
	return NewPaymentService(store, store, store), group, users
}

func claim(groupID primitive.ObjectID) CreatePaymentInput {
	return CreatePaymentInput{
		GroupID:           groupID,
		Amount:            5000,
		UserBankName:      "KCB",
		UserAccountName:   "Jane W",
		UserAccountNumber: "1100245",
	}
}

func TestCreatePayment(t *testing.T) {
	svc, group, users := newTestPaymentService(t)
	ctx := context.Background()

	payment, err := svc.CreatePayment(ctx, users[0], claim(group.ID))
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	if payment.Status != models.PaymentPending {
		t.Errorf("new payment status = %s, want pending", payment.Status)
	}
	if payment.ID.IsZero() {
		t.Error("expected assigned payment id")
	}

	// non-members cannot file claims
	if _, err := svc.CreatePayment(ctx, primitive.NewObjectID(), claim(group.ID)); !errors.Is(err, ErrNotGroupMember) {
		t.Errorf("stranger claim err = %v, want ErrNotGroupMember", err)
	}
	if _, err := svc.CreatePayment(ctx, users[0], claim(primitive.NewObjectID())); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("missing group err = %v, want ErrGroupNotFound", err)
	}
}

func TestDuplicatePendingPaymentGuard(t *testing.T) {
	svc, group, users := newTestPaymentService(t)
	ctx := context.Background()

	first, err := svc.CreatePayment(ctx, users[0], claim(group.ID))
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	// a second claim while the first is pending is rejected
	if _, err := svc.CreatePayment(ctx, users[0], claim(group.ID)); !errors.Is(err, ErrDuplicatePendingPayment) {
		t.Fatalf("second pending claim err = %v, want ErrDuplicatePendingPayment", err)
	}

	// another member is unaffected
	if _, err := svc.CreatePayment(ctx, users[1], claim(group.ID)); err != nil {
		t.Fatalf("other member claim failed: %v", err)
	}

	// once decided, a fresh submission goes through
	if _, err := svc.UpdatePaymentStatus(ctx, first.ID, models.PaymentRejected, "no receipt"); err != nil {
		t.Fatalf("UpdatePaymentStatus failed: %v", err)
	}
	if _, err := svc.CreatePayment(ctx, users[0], claim(group.ID)); err != nil {
		t.Fatalf("resubmission after rejection failed: %v", err)
	}
}

func TestUpdatePaymentStatusOneShot(t *testing.T) {
	svc, group, users := newTestPaymentService(t)
	ctx := context.Background()

	payment, err := svc.CreatePayment(ctx, users[0], claim(group.ID))
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	decided, err := svc.UpdatePaymentStatus(ctx, payment.ID, models.PaymentApproved, "verified against statement")
	if err != nil {
		t.Fatalf("UpdatePaymentStatus failed: %v", err)
	}
	if decided.Status != models.PaymentApproved {
		t.Errorf("status = %s, want approved", decided.Status)
	}
	if decided.AdminNotes != "verified against statement" {
		t.Errorf("admin notes not stored: %q", decided.AdminNotes)
	}

	// a decided payment is immutable
	if _, err := svc.UpdatePaymentStatus(ctx, payment.ID, models.PaymentRejected, ""); !errors.Is(err, ErrPaymentProcessed) {
		t.Errorf("re-decide err = %v, want ErrPaymentProcessed", err)
	}

	if _, err := svc.UpdatePaymentStatus(ctx, primitive.NewObjectID(), models.PaymentApproved, ""); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("missing payment err = %v, want ErrPaymentNotFound", err)
	}
	if _, err := svc.UpdatePaymentStatus(ctx, payment.ID, models.PaymentStatus("cancelled"), ""); !errors.Is(err, ErrInvalidPaymentStatus) {
		t.Errorf("bogus status err = %v, want ErrInvalidPaymentStatus", err)
	}
}

func TestPaymentQueries(t *testing.T) {
	svc, group, users := newTestPaymentService(t)
	ctx := context.Background()

	p1, _ := svc.CreatePayment(ctx, users[0], claim(group.ID))
	p2, _ := svc.CreatePayment(ctx, users[1], claim(group.ID))
	if _, err := svc.UpdatePaymentStatus(ctx, p1.ID, models.PaymentApproved, ""); err != nil {
		t.Fatalf("UpdatePaymentStatus failed: %v", err)
	}

	all, err := svc.GetAllPayments(ctx)
	if err != nil {
		t.Fatalf("GetAllPayments failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all payments = %d, want 2", len(all))
	}

	pending, err := svc.GetPendingPayments(ctx)
	if err != nil {
		t.Fatalf("GetPendingPayments failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != p2.ID {
		t.Errorf("pending queue should hold exactly the undecided payment")
	}

	mine, err := svc.GetUserPayments(ctx, users[0])
	if err != nil {
		t.Fatalf("GetUserPayments failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != p1.ID {
		t.Errorf("user payments should be filtered by owner")
	}

	got, err := svc.GetPaymentByID(ctx, p2.ID)
	if err != nil {
		t.Fatalf("GetPaymentByID failed: %v", err)
	}
	if got.UserID != users[1] {
		t.Errorf("payment owner = %s, want %s", got.UserID.Hex(), users[1].Hex())
	}
}

func TestApprovalWritesLedgerEntry(t *testing.T) {
	store := memstore.New()
	groupSvc := NewGroupService(store, store, store)
	group, users := fillGroup(t, groupSvc, 5000, models.PlanWeekly, 3)
	svc := NewPaymentService(store, store, store)
	ctx := context.Background()

	p1, _ := svc.CreatePayment(ctx, users[0], claim(group.ID))
	p2, _ := svc.CreatePayment(ctx, users[1], claim(group.ID))
	if _, err := svc.UpdatePaymentStatus(ctx, p1.ID, models.PaymentApproved, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.UpdatePaymentStatus(ctx, p2.ID, models.PaymentRejected, "blurry receipt"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	txns, err := store.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("ledger entries = %d, want 1 (rejections must not be recorded)", len(txns))
	}
	txn := txns[0]
	if txn.Kind != "contribution" {
		t.Errorf("kind = %q, want contribution", txn.Kind)
	}
	if txn.UserID != users[0] || txn.GroupID != group.ID || txn.Amount != 5000 {
		t.Errorf("ledger entry does not match the approved payment: %+v", txn)
	}
}
