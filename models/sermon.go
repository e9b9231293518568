package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Sermon struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Preacher      string             `bson:"preacher" json:"preacher"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Date          time.Time          `bson:"date" json:"date"`
	Duration      string             `bson:"duration,omitempty" json:"duration,omitempty"`
	AudioURL      string             `bson:"audio_url" json:"audio_url"`
	ImageURL      string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	PlayCount     int64              `bson:"play_count" json:"play_count"`
	DownloadCount int64              `bson:"download_count" json:"download_count"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
