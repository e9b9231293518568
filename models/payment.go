package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus is the decision state of a payment claim.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) ValidDecision() bool {
	return s == PaymentApproved || s == PaymentRejected
}

// Payment is a member's claim that they contributed for a cycle, backed by
// bank details and an optional receipt. An admin approves or rejects it
// exactly once; it never feeds back into the payout cycle.
type Payment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"user_id" json:"user_id"`
	GroupID           primitive.ObjectID `bson:"group_id" json:"group_id"`
	Amount            float64            `bson:"amount" json:"amount"`
	UserBankName      string             `bson:"user_bank_name" json:"user_bank_name"`
	UserAccountName   string             `bson:"user_account_name" json:"user_account_name"`
	UserAccountNumber string             `bson:"user_account_number" json:"user_account_number"`
	ReceiptURL        string             `bson:"receipt_url,omitempty" json:"receipt_url,omitempty"`
	Status            PaymentStatus      `bson:"status" json:"status"`
	AdminNotes        string             `bson:"admin_notes,omitempty" json:"admin_notes,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}
