// Package services holds the business logic behind the HTTP controllers:
// the group payout cycle engine, the contribution aggregator and the
// payment attestation ledger. Services talk to storage through the
// interfaces in the storage package and know nothing about HTTP.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage"
)

var payoutsSettled = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chamacircle_payouts_settled_total",
	Help: "Number of payouts marked complete across all groups.",
})

// PayoutPreview describes who gets paid next and how much, after fees.
type PayoutPreview struct {
	RecipientUserID primitive.ObjectID `json:"recipient_user_id"`
	TotalPayout     float64            `json:"total_payout"`
	FeePercent      float64            `json:"fee_percent"`
}

// GroupService is the cycle engine for savings groups. All mutations of a
// group are serialized per group id; reads go straight through.
type GroupService struct {
	groups   storage.GroupStore
	payments storage.PaymentStore
	txns     storage.TransactionStore
	locks    keyedMutex
}

func NewGroupService(groups storage.GroupStore, payments storage.PaymentStore, txns storage.TransactionStore) *GroupService {
	return &GroupService{groups: groups, payments: payments, txns: txns}
}

// payoutAmount computes the pool for one payout: every CURRENT member
// contributes once, minus the plan's fee. A group that loses members
// mid-rotation pays out a smaller pool to everyone still waiting.
func payoutAmount(memberCount int, amount float64, plan models.Plan) (total, feePercent float64) {
	feePercent = FeeFor(plan)
	gross := float64(memberCount) * amount
	return math.Round(gross * (1 - feePercent)), feePercent
}

func (s *GroupService) getGroup(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	g, err := s.groups.GetGroup(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("load group: %w", err)
	}
	return g, nil
}

// CreateGroup starts a new group at cycle 1 with no members.
func (s *GroupService) CreateGroup(ctx context.Context, title string, amount float64, plan models.Plan) (*models.Group, error) {
	if !models.AmountAllowed(amount) {
		return nil, ErrInvalidAmount
	}
	if !plan.Valid() {
		return nil, ErrInvalidPlan
	}
	now := time.Now()
	group := &models.Group{
		Title:        title,
		Amount:       amount,
		Plan:         plan,
		Members:      []models.GroupMember{},
		CurrentCycle: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	slog.Info("group created", "group_id", group.ID.Hex(), "amount", amount, "plan", plan)
	return group, nil
}

// JoinGroup admits a user into the next open payout slot, first come first
// served.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID primitive.ObjectID) (*models.Group, error) {
	return s.admit(ctx, groupID, userID, nil)
}

// AddUserToGroup is the admin variant of JoinGroup: the admission rules are
// identical but a specific payout slot may be chosen, provided it is free.
func (s *GroupService) AddUserToGroup(ctx context.Context, groupID, userID primitive.ObjectID, position *int) (*models.Group, error) {
	return s.admit(ctx, groupID, userID, position)
}

func (s *GroupService) admit(ctx context.Context, groupID, userID primitive.ObjectID, position *int) (*models.Group, error) {
	defer s.locks.lock(groupID.Hex())()

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.Member(userID) != nil {
		return nil, ErrAlreadyMember
	}
	if len(group.Members) >= models.MaxMembers {
		return nil, ErrGroupFull
	}

	slot := len(group.Members) + 1
	if position != nil {
		if *position < 1 || *position > models.MaxMembers {
			return nil, ErrInvalidPosition
		}
		if group.MemberAtPosition(*position) != nil {
			return nil, ErrPositionTaken
		}
		slot = *position
	}

	group.Members = append(group.Members, models.GroupMember{
		UserID:      userID,
		Position:    slot,
		HasReceived: false,
		JoinedAt:    time.Now(),
	})
	group.UpdatedAt = time.Now()
	if err := s.groups.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("save group: %w", err)
	}
	slog.Info("member admitted", "group_id", groupID.Hex(), "user_id", userID.Hex(), "position", slot)
	return group, nil
}

// RemoveUserFromGroup drops the member entirely. Remaining positions are NOT
// renumbered, so the rotation can point at an empty slot until an admin
// reassigns it. Known operational hazard, kept for compatibility.
func (s *GroupService) RemoveUserFromGroup(ctx context.Context, groupID, userID primitive.ObjectID) (*models.Group, error) {
	defer s.locks.lock(groupID.Hex())()

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	member := group.Member(userID)
	if member == nil {
		return nil, ErrNotMember
	}
	kept := group.Members[:0]
	for _, m := range group.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	group.Members = kept
	group.UpdatedAt = time.Now()
	if err := s.groups.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("save group: %w", err)
	}
	slog.Info("member removed", "group_id", groupID.Hex(), "user_id", userID.Hex())
	return group, nil
}

// NextPayout previews the upcoming payout without mutating anything.
func (s *GroupService) NextPayout(ctx context.Context, groupID primitive.ObjectID) (*PayoutPreview, error) {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	recipient := group.MemberAtPosition(group.CurrentCycle)
	if recipient == nil {
		return nil, ErrPayoutOrderIncomplete
	}
	total, feePercent := payoutAmount(len(group.Members), group.Amount, group.Plan)
	return &PayoutPreview{
		RecipientUserID: recipient.UserID,
		TotalPayout:     total,
		FeePercent:      feePercent,
	}, nil
}

// MarkPayoutComplete settles the current recipient and advances the rotation
// in one step. Past position 7 the cycle wraps to 1 and every member's
// has_received flag is cleared for the new rotation.
func (s *GroupService) MarkPayoutComplete(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error) {
	defer s.locks.lock(groupID.Hex())()

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	recipient := group.MemberAtPosition(group.CurrentCycle)
	if recipient == nil {
		return nil, ErrNoRecipientForCycle
	}
	recipient.HasReceived = true

	next := group.CurrentCycle + 1
	if next > models.MaxMembers {
		next = 1
		for i := range group.Members {
			group.Members[i].HasReceived = false
		}
	}
	group.CurrentCycle = next
	group.UpdatedAt = time.Now()
	if err := s.groups.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("save group: %w", err)
	}
	total, _ := payoutAmount(len(group.Members), group.Amount, group.Plan)
	txn := &models.Transaction{
		UserID:    recipient.UserID,
		GroupID:   groupID,
		Amount:    total,
		Kind:      "payout",
		CreatedAt: time.Now(),
	}
	if err := s.txns.CreateTransaction(ctx, txn); err != nil {
		slog.Error("failed to record payout transaction", "group_id", groupID.Hex(), "error", err)
	}
	payoutsSettled.Inc()
	slog.Info("payout settled", "group_id", groupID.Hex(),
		"recipient", recipient.UserID.Hex(), "next_cycle", next)
	return group, nil
}

// AssignNextPayout jumps the rotation straight to the given member's slot.
// Admin override; nothing stops re-selecting someone who already received.
func (s *GroupService) AssignNextPayout(ctx context.Context, groupID, userID primitive.ObjectID) (*models.Group, error) {
	defer s.locks.lock(groupID.Hex())()

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	member := group.Member(userID)
	if member == nil {
		return nil, ErrNotMember
	}
	group.CurrentCycle = member.Position
	group.UpdatedAt = time.Now()
	if err := s.groups.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("save group: %w", err)
	}
	slog.Info("payout reassigned", "group_id", groupID.Hex(),
		"user_id", userID.Hex(), "cycle", member.Position)
	return group, nil
}

// DeleteGroup removes the group and every payment and transaction that
// references it. Hard delete, no archive.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID primitive.ObjectID) error {
	defer s.locks.lock(groupID.Hex())()

	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.payments.DeletePaymentsByGroup(ctx, groupID); err != nil {
		return fmt.Errorf("cascade payments: %w", err)
	}
	if err := s.txns.DeleteTransactionsByGroup(ctx, groupID); err != nil {
		return fmt.Errorf("cascade transactions: %w", err)
	}
	if err := s.groups.DeleteGroup(ctx, groupID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	slog.Info("group deleted", "group_id", groupID.Hex())
	return nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error) {
	return s.getGroup(ctx, groupID)
}

func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// UserGroups returns every group the user belongs to.
func (s *GroupService) UserGroups(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	groups, err := s.groups.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	return groups, nil
}
