package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatMessage struct {
	ID        string             `bson:"id" json:"id"`
	SenderID  primitive.ObjectID `bson:"sender_id" json:"senderId"`
	Text      string             `bson:"text" json:"text"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type Chat struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Key          string               `bson:"key,omitempty" json:"-"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Messages     []ChatMessage        `bson:"messages" json:"messages"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

func (c *Chat) HasParticipant(id primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}
