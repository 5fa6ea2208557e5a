package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/config"
)

func NewMongoClient(cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the unique and query indexes the repositories rely
// on. Email and username uniqueness is enforced here, not in application
// code.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, userIdx); err != nil {
		return err
	}
	storyIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
	}
	if _, err := db.Collection("stories").Indexes().CreateMany(ctx, storyIdx); err != nil {
		return err
	}
	postIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("user_created_idx"),
	}
	if _, err := db.Collection("posts").Indexes().CreateOne(ctx, postIdx); err != nil {
		return err
	}
	chatIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "participants", Value: 1}},
			Options: options.Index().SetName("participants_idx"),
		},
		{
			// one 1:1 chat per sorted participant pair
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("pair_key_unique"),
		},
	}
	if _, err := db.Collection("chats").Indexes().CreateMany(ctx, chatIdx); err != nil {
		return err
	}
	return nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
}
