package mongostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kamau/chamacircle-go/models"
)

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(u.Email)
	if _, err := s.users().InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err, "get user")
	}
	return &u, nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.users().FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u); err != nil {
		return nil, translate(err, "get user by email")
	}
	return &u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) setAdmin(ctx context.Context, filter bson.M, isAdmin bool) (*models.User, error) {
	after := options.After
	var u models.User
	err := s.users().FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"is_admin": isAdmin, "updated_at": time.Now()}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&u)
	if err != nil {
		return nil, translate(err, "set admin status")
	}
	return &u, nil
}

func (s *MongoStore) SetAdminStatus(ctx context.Context, id primitive.ObjectID, isAdmin bool) (*models.User, error) {
	return s.setAdmin(ctx, bson.M{"_id": id}, isAdmin)
}

func (s *MongoStore) SetAdminStatusByEmail(ctx context.Context, email string, isAdmin bool) (*models.User, error) {
	return s.setAdmin(ctx, bson.M{"email": strings.ToLower(email)}, isAdmin)
}
