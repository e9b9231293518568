// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
// Services translate it into their own caller-facing error kinds.
var ErrNotFound = errors.New("not found")

// GroupStore persists savings groups with their embedded members.
// Groups are read and written whole so the cycle engine always sees a
// consistent member list.
type GroupStore interface {
	CreateGroup(ctx context.Context, g *models.Group) error
	GetGroup(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	ListGroupsByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)
	UpdateGroup(ctx context.Context, g *models.Group) error
	DeleteGroup(ctx context.Context, id primitive.ObjectID) error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetAdminStatus(ctx context.Context, id primitive.ObjectID, isAdmin bool) (*models.User, error)
	SetAdminStatusByEmail(ctx context.Context, email string, isAdmin bool) (*models.User, error)
}

// PaymentStore persists payment claims. Lists are ordered newest first.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error)
	ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	// FindPendingPayment returns the user's pending payment in the group,
	// or ErrNotFound if there is none.
	FindPendingPayment(ctx context.Context, userID, groupID primitive.ObjectID) (*models.Payment, error)
	UpdatePayment(ctx context.Context, p *models.Payment) error
	DeletePaymentsByGroup(ctx context.Context, groupID primitive.ObjectID) error
}

// TransactionStore persists the audit ledger.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	DeleteTransactionsByGroup(ctx context.Context, groupID primitive.ObjectID) error
}

// SermonStore persists sermon metadata (media lives in Cloudinary).
type SermonStore interface {
	CreateSermon(ctx context.Context, s *models.Sermon) error
	GetSermon(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error)
	ListSermons(ctx context.Context) ([]models.Sermon, error)
	UpdateSermon(ctx context.Context, s *models.Sermon) error
	DeleteSermon(ctx context.Context, id primitive.ObjectID) error
	IncrementPlayCount(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error)
	IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error)
}

// Store is the full persistence surface of the application. The concrete
// backend (MongoDB in production, in-memory in tests) is injected at startup
// so the services never know which one they are talking to.
type Store interface {
	GroupStore
	UserStore
	PaymentStore
	TransactionStore
	SermonStore
	Close(ctx context.Context) error
}
