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

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error)
	ToggleLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, int, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoCommentRepo struct {
	coll *mongo.Collection
}

func NewCommentRepository(coll *mongo.Collection) CommentRepository {
	return &mongoCommentRepo{coll: coll}
}

func (r *mongoCommentRepo) Create(ctx context.Context, c *models.Comment) error {
	c.CreatedAt = time.Now().UTC()
	if c.Likes == nil {
		c.Likes = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		return storageErr(err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoCommentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &c, nil
}

func (r *mongoCommentRepo) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, storageErr(err)
	}
	defer cur.Close(ctx)
	out := []*models.Comment{}
	for cur.Next(ctx) {
		var c models.Comment
		if err := cur.Decode(&c); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, &c)
	}
	return out, nil
}

func (r *mongoCommentRepo) ToggleLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, int, error) {
	return toggleLike(ctx, r.coll, commentID, userID)
}

func (r *mongoCommentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
