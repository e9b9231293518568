package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction is an audit record of money movement: one per approved
// contribution and one per settled payout. Deleted along with their group.
type Transaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	Amount    float64            `bson:"amount" json:"amount"`
	Kind      string             `bson:"kind" json:"kind"` // contribution, payout
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
