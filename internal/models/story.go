package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Story struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"user_id" json:"userId"`
	Image     string               `bson:"image" json:"image"`
	Views     []primitive.ObjectID `bson:"views" json:"views"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time            `bson:"expires_at" json:"expiresAt"`
}

func (s *Story) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// UserStories groups a user's unexpired stories for the feed view.
type UserStories struct {
	UserID  primitive.ObjectID `json:"userId"`
	Stories []*Story           `json:"stories"`
}
