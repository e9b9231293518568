package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kamau/chamacircle-go/models"
	"github.com/kamau/chamacircle-go/storage"
)

func (s *MongoStore) CreateGroup(ctx context.Context, g *models.Group) error {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	if _, err := s.groups().InsertOne(ctx, g); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (s *MongoStore) GetGroup(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	if err := s.groups().FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, translate(err, "get group")
	}
	return &g, nil
}

func (s *MongoStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	cursor, err := s.groups().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	var groups []models.Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return groups, nil
}

func (s *MongoStore) ListGroupsByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	cursor, err := s.groups().Find(ctx, bson.M{"members.user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list groups by member: %w", err)
	}
	var groups []models.Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return groups, nil
}

// UpdateGroup replaces the whole document; members travel with their group.
func (s *MongoStore) UpdateGroup(ctx context.Context, g *models.Group) error {
	res, err := s.groups().ReplaceOne(ctx, bson.M{"_id": g.ID}, g)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.groups().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}
