package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is the contribution schedule of a savings group.
type Plan string

const (
	PlanWeekly  Plan = "weekly"
	PlanMonthly Plan = "monthly"
)

func (p Plan) Valid() bool {
	return p == PlanWeekly || p == PlanMonthly
}

// MaxMembers caps a group at seven payout slots, one per cycle.
const MaxMembers = 7

// AllowedAmounts is the fixed set of per-member contribution amounts.
var AllowedAmounts = []float64{5000, 10000, 20000, 50000, 100000}

// AmountAllowed reports whether amount is one of the supported contribution tiers.
func AmountAllowed(amount float64) bool {
	for _, a := range AllowedAmounts {
		if a == amount {
			return true
		}
	}
	return false
}

type Group struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Amount       float64            `bson:"amount" json:"amount"`
	Plan         Plan               `bson:"plan" json:"plan"`
	Members      []GroupMember      `bson:"members" json:"members"`
	CurrentCycle int                `bson:"current_cycle" json:"current_cycle"` // 1..7, the position being paid out
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// GroupMember is owned by its group document; positions are never renumbered,
// so removing a member can leave a gap in the payout order.
type GroupMember struct {
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Position    int                `bson:"position" json:"position"` // payout slot, 1..7
	HasReceived bool               `bson:"has_received" json:"has_received"`
	JoinedAt    time.Time          `bson:"joined_at" json:"joined_at"`
}

// Member returns the member record for userID, or nil.
func (g *Group) Member(userID primitive.ObjectID) *GroupMember {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

// MemberAtPosition returns the member holding the given payout slot, or nil.
func (g *Group) MemberAtPosition(position int) *GroupMember {
	for i := range g.Members {
		if g.Members[i].Position == position {
			return &g.Members[i]
		}
	}
	return nil
}
