// Package mongostore provides the MongoDB-backed implementation of
// storage.Store.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kamau/chamacircle-go/storage"
)

// Ensure MongoStore implements storage.Store.
var _ storage.Store = (*MongoStore)(nil)

// MongoStore implements storage.Store on top of a connected mongo client.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// New wraps an already-connected client. The caller owns connection setup so
// the store can share the client with health checks.
func New(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(dbName)}
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) groups() *mongo.Collection       { return s.db.Collection("groups") }
func (s *MongoStore) users() *mongo.Collection        { return s.db.Collection("users") }
func (s *MongoStore) payments() *mongo.Collection     { return s.db.Collection("payments") }
func (s *MongoStore) transactions() *mongo.Collection { return s.db.Collection("transactions") }
func (s *MongoStore) sermons() *mongo.Collection      { return s.db.Collection("sermons") }

// translate maps driver-level misses onto the storage sentinel.
func translate(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}
