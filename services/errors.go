package services

import "errors"

// Caller-facing precondition errors. Each maps to a distinct message so
// clients can render precise guidance; none is retryable.
var (
	ErrInvalidAmount   = errors.New("invalid contribution amount")
	ErrInvalidPlan     = errors.New("plan must be weekly or monthly")
	ErrInvalidPosition = errors.New("position must be between 1 and 7")
	ErrGroupNotFound   = errors.New("group not found")
	ErrAlreadyMember   = errors.New("user is already in this group")
	ErrNotMember       = errors.New("user is not in this group")
	ErrGroupFull       = errors.New("group is full")
	ErrPositionTaken   = errors.New("position is already taken")

	// ErrPayoutOrderIncomplete is returned by the read-only payout preview
	// when no member holds the current cycle's slot.
	ErrPayoutOrderIncomplete = errors.New("payout order not set or group incomplete")
	// ErrNoRecipientForCycle mirrors it for the settlement path.
	ErrNoRecipientForCycle = errors.New("no recipient for current cycle")

	ErrPaymentNotFound         = errors.New("payment not found")
	ErrNotGroupMember          = errors.New("you are not a member of this group")
	ErrDuplicatePendingPayment = errors.New("you already have a pending payment for this group")
	ErrPaymentProcessed        = errors.New("payment has already been processed")
	ErrInvalidPaymentStatus    = errors.New("status must be approved or rejected")
)
