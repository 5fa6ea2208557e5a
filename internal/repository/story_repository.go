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

type StoryRepository interface {
	Create(ctx context.Context, s *models.Story) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	ListActive(ctx context.Context, now time.Time) ([]*models.Story, error)
	ListActiveByUser(ctx context.Context, userID primitive.ObjectID, now time.Time) ([]*models.Story, error)
	MarkViewed(ctx context.Context, storyID, viewerID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoStoryRepo struct {
	coll *mongo.Collection
}

func NewStoryRepository(coll *mongo.Collection) StoryRepository {
	return &mongoStoryRepo{coll: coll}
}

func (r *mongoStoryRepo) Create(ctx context.Context, s *models.Story) error {
	if s.Views == nil {
		s.Views = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, s)
	if err != nil {
		return storageErr(err)
	}
	s.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoStoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	var s models.Story
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &s, nil
}

func (r *mongoStoryRepo) listActive(ctx context.Context, filter bson.M, now time.Time) ([]*models.Story, error) {
	filter["expires_at"] = bson.M{"$gt": now}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, storageErr(err)
	}
	defer cur.Close(ctx)
	out := []*models.Story{}
	for cur.Next(ctx) {
		var s models.Story
		if err := cur.Decode(&s); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, &s)
	}
	return out, nil
}

// ListActive returns only unexpired stories; expiry is enforced in the
// query, never left to the sweeper.
func (r *mongoStoryRepo) ListActive(ctx context.Context, now time.Time) ([]*models.Story, error) {
	return r.listActive(ctx, bson.M{}, now)
}

func (r *mongoStoryRepo) ListActiveByUser(ctx context.Context, userID primitive.ObjectID, now time.Time) ([]*models.Story, error) {
	return r.listActive(ctx, bson.M{"user_id": userID}, now)
}

// MarkViewed appends viewerID to the views set. $addToSet makes the call
// idempotent under any interleaving; views are never removed.
func (r *mongoStoryRepo) MarkViewed(ctx context.Context, storyID, viewerID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": storyID},
		bson.M{"$addToSet": bson.M{"views": viewerID}},
	)
	if err != nil {
		return storageErr(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoStoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoStoryRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, storageErr(err)
	}
	return res.DeletedCount, nil
}
