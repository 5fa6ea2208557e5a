package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/models"
)

type ChatRepository interface {
	ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Chat, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error)
	CreateOrGet(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error)
	AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg models.ChatMessage) error
}

// pairKey orders the two ids so both directions address the same 1:1 chat.
func pairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if bh < ah {
		ah, bh = bh, ah
	}
	return ah + ":" + bh
}

type mongoChatRepo struct {
	coll *mongo.Collection
}

func NewChatRepository(coll *mongo.Collection) ChatRepository {
	return &mongoChatRepo{coll: coll}
}

func (r *mongoChatRepo) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]*models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, storageErr(err)
	}
	defer cur.Close(ctx)
	out := []*models.Chat{}
	for cur.Next(ctx) {
		var c models.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, &c)
	}
	return out, nil
}

func (r *mongoChatRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var c models.Chat
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &c, nil
}

// CreateOrGet upserts on the sorted-pair key, backed by a unique index, so
// two concurrent first messages between the same pair land on one chat.
func (r *mongoChatRepo) CreateOrGet(ctx context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c models.Chat
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"key": pairKey(a, b)},
		bson.M{"$setOnInsert": bson.M{
			"participants": bson.A{a, b},
			"messages":     []models.ChatMessage{},
			"created_at":   now,
			"updated_at":   now,
		}},
		opts,
	).Decode(&c)
	if err != nil {
		return nil, storageErr(err)
	}
	return &c, nil
}

func (r *mongoChatRepo) AppendMessage(ctx context.Context, chatID primitive.ObjectID, msg models.ChatMessage) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": chatID},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return storageErr(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
