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

func (s *MongoStore) CreateSermon(ctx context.Context, sermon *models.Sermon) error {
	if sermon.ID.IsZero() {
		sermon.ID = primitive.NewObjectID()
	}
	if _, err := s.sermons().InsertOne(ctx, sermon); err != nil {
		return fmt.Errorf("insert sermon: %w", err)
	}
	return nil
}

func (s *MongoStore) GetSermon(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error) {
	var sermon models.Sermon
	if err := s.sermons().FindOne(ctx, bson.M{"_id": id}).Decode(&sermon); err != nil {
		return nil, translate(err, "get sermon")
	}
	return &sermon, nil
}

func (s *MongoStore) ListSermons(ctx context.Context) ([]models.Sermon, error) {
	cursor, err := s.sermons().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"date": -1}))
	if err != nil {
		return nil, fmt.Errorf("list sermons: %w", err)
	}
	var sermons []models.Sermon
	if err := cursor.All(ctx, &sermons); err != nil {
		return nil, fmt.Errorf("decode sermons: %w", err)
	}
	return sermons, nil
}

func (s *MongoStore) UpdateSermon(ctx context.Context, sermon *models.Sermon) error {
	res, err := s.sermons().ReplaceOne(ctx, bson.M{"_id": sermon.ID}, sermon)
	if err != nil {
		return fmt.Errorf("update sermon: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteSermon(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.sermons().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete sermon: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *MongoStore) increment(ctx context.Context, id primitive.ObjectID, field string) (*models.Sermon, error) {
	after := options.After
	var sermon models.Sermon
	err := s.sermons().FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: 1}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&sermon)
	if err != nil {
		return nil, translate(err, "increment "+field)
	}
	return &sermon, nil
}

func (s *MongoStore) IncrementPlayCount(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error) {
	return s.increment(ctx, id, "play_count")
}

func (s *MongoStore) IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error) {
	return s.increment(ctx, id, "download_count")
}
