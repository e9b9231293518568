package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage"
)

// CreatePaymentInput carries a member's payment claim.
type CreatePaymentInput struct {
	GroupID           primitive.ObjectID
	Amount            float64
	UserBankName      string
	UserAccountName   string
	UserAccountNumber string
	ReceiptURL        string
}

// PaymentService is the attestation ledger: members claim "I paid", admins
// approve or reject, and nothing here moves money or advances a cycle.
type PaymentService struct {
	payments storage.PaymentStore
	groups   storage.GroupStore
	txns     storage.TransactionStore
	locks    keyedMutex
}

func NewPaymentService(payments storage.PaymentStore, groups storage.GroupStore, txns storage.TransactionStore) *PaymentService {
	return &PaymentService{payments: payments, groups: groups, txns: txns}
}

// CreatePayment records a pending claim. A user may have at most one pending
// claim per group; the check-then-insert is serialized per user+group.
func (s *PaymentService) CreatePayment(ctx context.Context, userID primitive.ObjectID, in CreatePaymentInput) (*models.Payment, error) {
	defer s.locks.lock(userID.Hex() + ":" + in.GroupID.Hex())()

	group, err := s.groups.GetGroup(ctx, in.GroupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("load group: %w", err)
	}
	if group.Member(userID) == nil {
		return nil, ErrNotGroupMember
	}

	if _, err := s.payments.FindPendingPayment(ctx, userID, in.GroupID); err == nil {
		return nil, ErrDuplicatePendingPayment
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check pending payment: %w", err)
	}

	now := time.Now()
	payment := &models.Payment{
		UserID:            userID,
		GroupID:           in.GroupID,
		Amount:            in.Amount,
		UserBankName:      in.UserBankName,
		UserAccountName:   in.UserAccountName,
		UserAccountNumber: in.UserAccountNumber,
		ReceiptURL:        in.ReceiptURL,
		Status:            models.PaymentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	slog.Info("payment claim recorded", "payment_id", payment.ID.Hex(),
		"user_id", userID.Hex(), "group_id", in.GroupID.Hex(), "amount", in.Amount)
	return payment, nil
}

// UpdatePaymentStatus is the one-shot admin decision. A processed payment is
// immutable; a rejected one does not block a fresh submission.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, paymentID primitive.ObjectID, status models.PaymentStatus, adminNotes string) (*models.Payment, error) {
	if !status.ValidDecision() {
		return nil, ErrInvalidPaymentStatus
	}

	payment, err := s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	defer s.locks.lock(payment.UserID.Hex() + ":" + payment.GroupID.Hex())()

	// Re-read under the lock so two admins cannot both decide it.
	payment, err = s.getPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, ErrPaymentProcessed
	}

	payment.Status = status
	payment.AdminNotes = adminNotes
	payment.UpdatedAt = time.Now()
	if err := s.payments.UpdatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	if status == models.PaymentApproved {
		txn := &models.Transaction{
			UserID:    payment.UserID,
			GroupID:   payment.GroupID,
			Amount:    payment.Amount,
			Kind:      "contribution",
			CreatedAt: time.Now(),
		}
		if err := s.txns.CreateTransaction(ctx, txn); err != nil {
			slog.Error("failed to record contribution transaction",
				"payment_id", paymentID.Hex(), "error", err)
		}
	}
	slog.Info("payment decided", "payment_id", paymentID.Hex(), "status", status)
	return payment, nil
}

func (s *PaymentService) getPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	payment, err := s.payments.GetPayment(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}
	return payment, nil
}

func (s *PaymentService) GetPaymentByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	return s.getPayment(ctx, id)
}

func (s *PaymentService) GetUserPayments(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	payments, err := s.payments.ListPaymentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user payments: %w", err)
	}
	return payments, nil
}

func (s *PaymentService) GetAllPayments(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.payments.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *PaymentService) GetPendingPayments(ctx context.Context) ([]models.Payment, error) {
	return s.GetAllPaymentsByStatus(ctx, models.PaymentPending)
}

func (s *PaymentService) GetAllPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	payments, err := s.payments.ListPaymentsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list %s payments: %w", status, err)
	}
	return payments, nil
}
