package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage"
)

// newestFirst matches the admin review queue ordering.
var newestFirst = options.Find().SetSort(bson.M{"created_at": -1})

func (s *MongoStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := s.payments().InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *MongoStore) GetPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var p models.Payment
	if err := s.payments().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err, "get payment")
	}
	return &p, nil
}

func (s *MongoStore) findPayments(ctx context.Context, filter bson.M) ([]models.Payment, error) {
	cursor, err := s.payments().Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	return payments, nil
}

func (s *MongoStore) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return s.findPayments(ctx, bson.M{})
}

func (s *MongoStore) ListPaymentsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	return s.findPayments(ctx, bson.M{"user_id": userID})
}

func (s *MongoStore) ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return s.findPayments(ctx, bson.M{"status": status})
}

func (s *MongoStore) FindPendingPayment(ctx context.Context, userID, groupID primitive.ObjectID) (*models.Payment, error) {
	var p models.Payment
	filter := bson.M{"user_id": userID, "group_id": groupID, "status": models.PaymentPending}
	if err := s.payments().FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, translate(err, "find pending payment")
	}
	return &p, nil
}

func (s *MongoStore) UpdatePayment(ctx context.Context, p *models.Payment) error {
	res, err := s.payments().ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeletePaymentsByGroup(ctx context.Context, groupID primitive.ObjectID) error {
	if _, err := s.payments().DeleteMany(ctx, bson.M{"group_id": groupID}); err != nil {
		return fmt.Errorf("delete payments by group: %w", err)
	}
	return nil
}

// ---------------- Transactions ----------------

func (s *MongoStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if _, err := s.transactions().InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *MongoStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	cursor, err := s.transactions().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var txns []models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txns, nil
}

func (s *MongoStore) DeleteTransactionsByGroup(ctx context.Context, groupID primitive.ObjectID) error {
	if _, err := s.transactions().DeleteMany(ctx, bson.M{"group_id": groupID}); err != nil {
		return fmt.Errorf("delete transactions by group: %w", err)
	}
	return nil
}
