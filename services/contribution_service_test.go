package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage/memstore"
)

func TestUserContributionsProjection(t *testing.T) {
	store := memstore.New()
	groupSvc := NewGroupService(store, store, store)
	contribSvc := NewContributionService(store)
	contribSvc.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	// weekly group, 7 members, the observed user holds position 5
	group, users := fillGroup(t, groupSvc, 10000, models.PlanWeekly, 7)
	me := users[4]

	// two completed cycles: positions 1 and 2 have been paid
	for i := 0; i < 2; i++ {
		if _, err := groupSvc.MarkPayoutComplete(ctx, group.ID); err != nil {
			t.Fatalf("MarkPayoutComplete failed: %v", err)
		}
	}

	summary, err := contribSvc.UserContributions(ctx, me)
	if err != nil {
		t.Fatalf("UserContributions failed: %v", err)
	}

	if len(summary.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(summary.Groups))
	}
	// two completed cycles at 10000 each
	if summary.TotalContributed != 20000 {
		t.Errorf("total contributed = %v, want 20000", summary.TotalContributed)
	}
	// position 5 has not been paid yet
	if summary.TotalReceived != 0 {
		t.Errorf("total received = %v, want 0", summary.TotalReceived)
	}
	// cycle 3 <= position 5, so this cycle's contribution is outstanding
	if summary.PendingContributions != 10000 {
		t.Errorf("pending contributions = %v, want 10000", summary.PendingContributions)
	}

	if len(summary.NextPayouts) != 1 {
		t.Fatalf("next payouts = %d, want 1", len(summary.NextPayouts))
	}
	next := summary.NextPayouts[0]
	if next.Amount != 69300 { // round(7*10000*0.99)
		t.Errorf("projected payout = %v, want 69300", next.Amount)
	}
	if next.Position != 5 {
		t.Errorf("position = %d, want 5", next.Position)
	}
	// (5 - 3) weekly periods = 14 days out
	if next.EstimatedDate != "2026-03-24" {
		t.Errorf("estimated date = %s, want 2026-03-24", next.EstimatedDate)
	}
}

func TestUserContributionsAfterReceiving(t *testing.T) {
	store := memstore.New()
	groupSvc := NewGroupService(store, store, store)
	contribSvc := NewContributionService(store)
	ctx := context.Background()

	group, users := fillGroup(t, groupSvc, 5000, models.PlanMonthly, 7)
	me := users[0] // position 1, paid in the first cycle

	if _, err := groupSvc.MarkPayoutComplete(ctx, group.ID); err != nil {
		t.Fatalf("MarkPayoutComplete failed: %v", err)
	}

	summary, err := contribSvc.UserContributions(ctx, me)
	if err != nil {
		t.Fatalf("UserContributions failed: %v", err)
	}
	if summary.TotalReceived != 33950 { // round(7*5000*0.97)
		t.Errorf("total received = %v, want 33950", summary.TotalReceived)
	}
	if summary.TotalContributed != 5000 {
		t.Errorf("total contributed = %v, want 5000", summary.TotalContributed)
	}
	// cycle 2 > position 1, nothing outstanding for their own slot
	if summary.PendingContributions != 0 {
		t.Errorf("pending contributions = %v, want 0", summary.PendingContributions)
	}
	// received members have no projected payout
	if len(summary.NextPayouts) != 0 {
		t.Errorf("next payouts = %d, want 0", len(summary.NextPayouts))
	}
}

func TestUserContributionsSortsProjectionsByDate(t *testing.T) {
	store := memstore.New()
	groupSvc := NewGroupService(store, store, store)
	contribSvc := NewContributionService(store)
	contribSvc.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()
	me := primitive.NewObjectID()

	// monthly group where the user waits 2 periods: estimated 2026-05-10
	monthly, _ := fillGroup(t, groupSvc, 5000, models.PlanMonthly, 2)
	if _, err := groupSvc.JoinGroup(ctx, monthly.ID, me); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}

	// weekly group where the user waits 1 period: estimated 2026-03-17
	weekly, _ := fillGroup(t, groupSvc, 5000, models.PlanWeekly, 1)
	if _, err := groupSvc.JoinGroup(ctx, weekly.ID, me); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}

	summary, err := contribSvc.UserContributions(ctx, me)
	if err != nil {
		t.Fatalf("UserContributions failed: %v", err)
	}
	if len(summary.NextPayouts) != 2 {
		t.Fatalf("next payouts = %d, want 2", len(summary.NextPayouts))
	}
	if summary.NextPayouts[0].GroupID != weekly.ID {
		t.Errorf("first projection should be the sooner (weekly) payout")
	}
	if summary.NextPayouts[0].EstimatedDate != "2026-03-17" {
		t.Errorf("weekly estimate = %s, want 2026-03-17", summary.NextPayouts[0].EstimatedDate)
	}
	if summary.NextPayouts[1].EstimatedDate != "2026-05-10" {
		t.Errorf("monthly estimate = %s, want 2026-05-10", summary.NextPayouts[1].EstimatedDate)
	}
}

func TestUserContributionsEmpty(t *testing.T) {
	store := memstore.New()
	contribSvc := NewContributionService(store)

	summary, err := contribSvc.UserContributions(context.Background(), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("UserContributions failed: %v", err)
	}
	if summary.TotalContributed != 0 || summary.TotalReceived != 0 || summary.PendingContributions != 0 {
		t.Errorf("expected zero totals for user with no groups, got %+v", summary)
	}
	if len(summary.NextPayouts) != 0 {
		t.Errorf("next payouts = %d, want 0", len(summary.NextPayouts))
	}
}
