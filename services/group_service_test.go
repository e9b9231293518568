package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage/memstore"
)

func newTestGroupService() *GroupService {
	store := memstore.New()
	return NewGroupService(store, store, store)
}

// fillGroup creates a group and admits n distinct users, returning their ids
// in join order (position i+1 belongs to users[i]).
func fillGroup(t *testing.T, svc *GroupService, amount float64, plan models.Plan, n int) (*models.Group, []primitive.ObjectID) {
	t.Helper()
	ctx := context.Background()
	group, err := svc.CreateGroup(ctx, "Test Circle", amount, plan)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	users := make([]primitive.ObjectID, n)
	for i := range users {
		users[i] = primitive.NewObjectID()
		group, err = svc.JoinGroup(ctx, group.ID, users[i])
		if err != nil {
			t.Fatalf("JoinGroup #%d failed: %v", i+1, err)
		}
	}
	return group, users
}

func TestCreateGroupValidation(t *testing.T) {
	svc := newTestGroupService()
	ctx := context.Background()

	tests := []struct {
		name    string
		amount  float64
		plan    models.Plan
		wantErr error
	}{
		{"allowed amount weekly", 5000, models.PlanWeekly, nil},
		{"allowed amount monthly", 100000, models.PlanMonthly, nil},
		{"amount not in set", 7500, models.PlanWeekly, ErrInvalidAmount},
		{"zero amount", 0, models.PlanWeekly, ErrInvalidAmount},
		{"unknown plan", 5000, models.Plan("daily"), ErrInvalidPlan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, err := svc.CreateGroup(ctx, "Circle", tt.amount, tt.plan)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateGroup err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if group.CurrentCycle != 1 {
				t.Errorf("new group cycle = %d, want 1", group.CurrentCycle)
			}
			if len(group.Members) != 0 {
				t.Errorf("new group has %d members, want 0", len(group.Members))
			}
			if group.ID.IsZero() {
				t.Error("expected assigned id")
			}
		})
	}
}

func TestJoinGroupAssignsSequentialPositions(t *testing.T) {
	svc := newTestGroupService()
	group, _ := fillGroup(t, svc, 5000, models.PlanWeekly, 5)

	seen := map[int]bool{}
	for i, m := range group.Members {
		if m.Position != i+1 {
			t.Errorf("member %d position = %d, want %d", i, m.Position, i+1)
		}
		if seen[m.Position] {
			t.Errorf("duplicate position %d", m.Position)
		}
		seen[m.Position] = true
		if m.HasReceived {
			t.Errorf("member %d joined with has_received set", i)
		}
	}
}

func TestJoinGroupPreconditions(t *testing.T) {
	svc := newTestGroupService()
	ctx := context.Background()
	group, users := fillGroup(t, svc, 5000, models.PlanWeekly, 7)

	if _, err := svc.JoinGroup(ctx, group.ID, users[0]); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("rejoin err = %v, want ErrAlreadyMember", err)
	}
	if _, err := svc.JoinGroup(ctx, group.ID, primitive.NewObjectID()); !errors.Is(err, ErrGroupFull) {
		t.Errorf("8th join err = %v, want ErrGroupFull", err)
	}
	// the failed join must not have mutated the group
	got, err := svc.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(got.Members) != 7 {
		t.Errorf("members after failed join = %d, want 7", len(got.Members))
	}
	if _, err := svc.JoinGroup(ctx, primitive.NewObjectID(), users[0]); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("join missing group err = %v, want ErrGroupNotFound", err)
	}
}

func TestAddUserToGroupExplicitPosition(t *testing.T) {
	svc := newTestGroupService()
	ctx := context.Background()
	group, _ := fillGroup(t, svc, 10000, models.PlanMonthly, 2)

	pos := func(p int) *int { return &p }

	// free slot is accepted
	userID := primitive.NewObjectID()
	updated, err := svc.AddUserToGroup(ctx, group.ID, userID, pos(5))
	if err != nil {
		t.Fatalf("AddUserToGroup failed: %v", err)
	}
	if m := updated.Member(userID); m == nil || m.Position != 5 {
		t.Fatalf("expected new member at position 5, got %+v", m)
	}

	// occupied slot is rejected
	if _, err := svc.AddUserToGroup(ctx, group.ID, primitive.NewObjectID(), pos(5)); !errors.Is(err, ErrPositionTaken) {
		t.Errorf("occupied slot err = %v, want ErrPositionTaken", err)
	}

	// out-of-range slots are rejected
	for _, p := range []int{0, 8, -1} {
		if _, err := svc.AddUserToGroup(ctx, group.ID, primitive.NewObjectID(), pos(p)); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("position %d err = %v, want ErrInvalidPosition", p, err)
		}
	}

	// omitted position falls back to sequential admission
	auto := primitive.NewObjectID()
	updated, err = svc.AddUserToGroup(ctx, group.ID, auto, nil)
	if err != nil {
		t.Fatalf("AddUserToGroup auto failed: %v", err)
	}
	if m := updated.Member(auto); m == nil || m.Position != 4 {
		t.Fatalf("auto position = %+v, want position 4 (members.length+1)", m)
	}
}

func TestNextPayoutFormula(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		plan       models.Plan
		members    int
		wantPayout float64
		wantFee    float64
	}{
		{"weekly 7x10000", 10000, models.PlanWeekly, 7, 69300, 0.01},
		{"monthly 7x10000", 10000, models.PlanMonthly, 7, 67900, 0.03},
		{"monthly 7x5000", 5000, models.PlanMonthly, 7, 33950, 0.03},
		{"weekly 3x5000", 5000, models.PlanWeekly, 3, 14850, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestGroupService()
			group, users := fillGroup(t, svc, tt.amount, tt.plan, tt.members)

			preview, err := svc.NextPayout(context.Background(), group.ID)
			if err != nil {
				t.Fatalf("NextPayout failed: %v", err)
			}
			if preview.RecipientUserID != users[0] {
				t.Errorf("recipient = %s, want first joiner %s", preview.RecipientUserID.Hex(), users[0].Hex())
			}
			if preview.TotalPayout != tt.wantPayout {
				t.Errorf("total payout = %v, want %v", preview.TotalPayout, tt.wantPayout)
			}
			if preview.FeePercent != tt.wantFee {
				t.Errorf("fee percent = %v, want %v", preview.FeePercent, tt.wantFee)
			}
		})
	}
}

func TestNextPayoutIsIdempotentRead(t *testing.T) {
	svc := newTestGroupService()
	group, _ := fillGroup(t, svc, 10000, models.PlanWeekly, 4)
	ctx := context.Background()

	first, err := svc.NextPayout(ctx, group.ID)
	if err != nil {
		t.Fatalf("NextPayout failed: %v", err)
	}
	second, err := svc.NextPayout(ctx, group.ID)
	if err != nil {
		t.Fatalf("NextPayout failed: %v", err)
	}
	if *first != *second {
		t.Errorf("repeated preview differs: %+v vs %+v", first, second)
	}
	got, _ := svc.GetGroup(ctx, group.ID)
	if got.CurrentCycle != 1 {
		t.Errorf("preview mutated cycle to %d", got.CurrentCycle)
	}
}

func TestPayoutShrinksWithMembership(t *testing.T) {
	// The pool is computed from the CURRENT member count, so losing a member
	// mid-rotation shrinks every remaining payout.
	svc := newTestGroupService()
	ctx := context.Background()
	group, users := fillGroup(t, svc, 10000, models.PlanWeekly, 7)

	if _, err := svc.RemoveUserFromGroup(ctx, group.ID, users[6]); err != nil {
		t.Fatalf("RemoveUserFromGroup failed: %v", err)
	}
	preview, err := svc.NextPayout(ctx, group.ID)
	if err != nil {
		t.Fatalf("NextPayout failed: %v", err)
	}
	if want := float64(59400); preview.TotalPayout != want { // round(6*10000*0.99)
		t.Errorf("payout after removal = %v, want %v", preview.TotalPayout, want)
	}
}

func TestRemovalLeavesPositionGap(t *testing.T) {
	svc := newTestGroupService()
	ctx := context.Background()
	group, users := fillGroup(t, svc, 5000, models.PlanWeekly, 5)

	if _, err := svc.RemoveUserFromGroup(ctx, group.ID, users[2]); err != nil {
		t.Fatalf("RemoveUserFromGroup failed: %v", err)
	}
	got, _ := svc.GetGroup(ctx, group.ID)
	if got.MemberAtPosition(3) != nil {
		t.Fatal("position 3 should be vacant after removal, positions are never compacted")
	}
	if got.MemberAtPosition(4) == nil || got.MemberAtPosition(5) == nil {
		t.Fatal("later positions must keep their slots")
	}

	// advance the rotation into the hole: cycle 1, 2 settle, then cycle 3
	// has no recipient
	for i := 0; i < 2; i++ {
		if _, err := svc.MarkPayoutComplete(ctx, group.ID); err != nil {
			t.Fatalf("MarkPayoutComplete #%d failed: %v", i+1, err)
		}
	}
	if _, err := svc.NextPayout(ctx, group.ID); !errors.Is(err, ErrPayoutOrderIncomplete) {
		t.Errorf("NextPayout at vacant slot err = %v, want ErrPayoutOrderIncomplete", err)
	}
	if _, err := svc.MarkPayoutComplete(ctx, group.ID); !errors.Is(err, ErrNoRecipientForCycle) {
		t.Errorf("MarkPayoutComplete at vacant slot err = %v, want ErrNoRecipientForCycle", err)
	}

	if _, err := svc.RemoveUserFromGroup(ctx, group.ID, primitive.NewObjectID()); !errors.Is(err, ErrNotMember) {
		t.Errorf("remove stranger err = %v, want ErrNotMember", err)
	}
}

func TestFullRotationEndToEnd(t *testing.T) {
	svc := newTestGroupService()
	ctx := context.Background()
	group, users := fillGroup(t, svc, 5000, models.PlanMonthly, 7)

	preview, err := svc.NextPayout(ctx, group.ID)
	if err != nil {
		t.Fatalf("NextPayout failed: %v", err)
	}
	if preview.RecipientUserID != users[0] {
		t.Fatalf("first recipient = %s, want position 1 holder", preview.RecipientUserID.Hex())
	}
	if preview.TotalPayout != 33950 {
		t.Fatalf("first payout = %v, want 33950", preview.TotalPayout)
	}

	// settle positions 1..6; cycle advances one step each time and the flags
	// stay set
	for i := 0; i < 6; i++ {
		group, err = svc.MarkPayoutComplete(ctx, group.ID)
		if err != nil {
			t.Fatalf("MarkPayoutComplete #%d failed: %v", i+1, err)
		}
		if group.CurrentCycle != i+2 {
			t.Fatalf("cycle after settlement #%d = %d, want %d", i+1, group.CurrentCycle, i+2)
		}
		if m := group.Member(users[i]); !m.HasReceived {
			t.Fatalf("user %d not marked received", i+1)
		}
	}

	// the 7th settlement wraps the rotation and clears every flag
	group, err = svc.MarkPayoutComplete(ctx, group.ID)
	if err != nil {
		t.Fatalf("final MarkPayoutComplete failed: %v", err)
	}
	if group.CurrentCycle != 1 {
		t.Errorf("cycle after wrap = %d, want 1", group.CurrentCycle)
	}
	for i, m := range group.Members {
		if m.HasReceived {
			t.Errorf("member %d has_received not reset after wrap", i)
		}
	}
}

func TestAssignNextPayoutJumpsCycle(t *testing.T) {
	svc := newTestGroupService()
	ctx := context.Background()
	group, users := fillGroup(t, svc, 5000, models.PlanWeekly, 4)

	group, err := svc.AssignNextPayout(ctx, group.ID, users[3])
	if err != nil {
		t.Fatalf("AssignNextPayout failed: %v", err)
	}
	if group.CurrentCycle != 4 {
		t.Errorf("cycle after jump = %d, want 4", group.CurrentCycle)
	}
	preview, err := svc.NextPayout(ctx, group.ID)
	if err != nil {
		t.Fatalf("NextPayout failed: %v", err)
	}
	if preview.RecipientUserID != users[3] {
		t.Errorf("recipient after jump = %s, want %s", preview.RecipientUserID.Hex(), users[3].Hex())
	}

	// rewinding to an already-served member is allowed
	if _, err := svc.MarkPayoutComplete(ctx, group.ID); err != nil {
		t.Fatalf("MarkPayoutComplete failed: %v", err)
	}
	if _, err := svc.AssignNextPayout(ctx, group.ID, users[3]); err != nil {
		t.Errorf("re-assign to served member err = %v, want nil", err)
	}

	if _, err := svc.AssignNextPayout(ctx, group.ID, primitive.NewObjectID()); !errors.Is(err, ErrNotMember) {
		t.Errorf("assign stranger err = %v, want ErrNotMember", err)
	}
}

func TestDeleteGroupCascades(t *testing.T) {
	store := memstore.New()
	svc := NewGroupService(store, store, store)
	paySvc := NewPaymentService(store, store, store)
	ctx := context.Background()

	group, users := fillGroup(t, svc, 5000, models.PlanWeekly, 3)
	_, err := paySvc.CreatePayment(ctx, users[0], CreatePaymentInput{
		GroupID: group.ID, Amount: 5000,
		UserBankName: "Equity", UserAccountName: "A", UserAccountNumber: "001",
	})
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	if err := svc.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := svc.GetGroup(ctx, group.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("get deleted group err = %v, want ErrGroupNotFound", err)
	}
	payments, err := paySvc.GetUserPayments(ctx, users[0])
	if err != nil {
		t.Fatalf("GetUserPayments failed: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("payments survived group deletion: %d left", len(payments))
	}

	if err := svc.DeleteGroup(ctx, group.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("double delete err = %v, want ErrGroupNotFound", err)
	}
}

func TestUserGroupsFiltersByMembership(t *testing.T) {
	svc := newTestGroupService()
	ctx := context.Background()

	a, _ := fillGroup(t, svc, 5000, models.PlanWeekly, 2)
	userID := primitive.NewObjectID()
	if _, err := svc.JoinGroup(ctx, a.ID, userID); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	fillGroup(t, svc, 10000, models.PlanMonthly, 2) // a group the user is not in

	mine, err := svc.UserGroups(ctx, userID)
	if err != nil {
		t.Fatalf("UserGroups failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != a.ID {
		t.Errorf("UserGroups = %d groups, want exactly the joined one", len(mine))
	}

	all, err := svc.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListGroups = %d, want 2", len(all))
	}
}

func TestSettlementWritesPayoutLedgerEntry(t *testing.T) {
	store := memstore.New()
	svc := NewGroupService(store, store, store)
	ctx := context.Background()
	group, users := fillGroup(t, svc, 10000, models.PlanWeekly, 7)

	if _, err := svc.MarkPayoutComplete(ctx, group.ID); err != nil {
		t.Fatalf("MarkPayoutComplete failed: %v", err)
	}

	txns, err := store.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(txns))
	}
	txn := txns[0]
	if txn.Kind != "payout" {
		t.Errorf("kind = %q, want payout", txn.Kind)
	}
	if txn.UserID != users[0] {
		t.Errorf("payout recipient = %s, want position 1 holder", txn.UserID.Hex())
	}
	if txn.Amount != 69300 {
		t.Errorf("payout amount = %v, want 69300", txn.Amount)
	}
}
