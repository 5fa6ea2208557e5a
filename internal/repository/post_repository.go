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

type PostRepository interface {
	Create(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context, limit int64) ([]*models.Post, error)
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, int, error)
	AttachComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	DetachComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoPostRepo struct {
	coll *mongo.Collection
}

func NewPostRepository(coll *mongo.Collection) PostRepository {
	return &mongoPostRepo{coll: coll}
}

func (r *mongoPostRepo) Create(ctx context.Context, p *models.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return storageErr(err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoPostRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &p, nil
}

func (r *mongoPostRepo) List(ctx context.Context, limit int64) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr(err)
	}
	defer cur.Close(ctx)
	out := []*models.Post{}
	for cur.Next(ctx) {
		var p models.Post
		if err := cur.Decode(&p); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, &p)
	}
	return out, nil
}

// ToggleLike flips userID's membership in the post's likes set with a
// conditional add-then-pull, each a single atomic document mutation.
// Returns the new state and the resulting like count.
func (r *mongoPostRepo) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, int, error) {
	return toggleLike(ctx, r.coll, postID, userID)
}

func (r *mongoPostRepo) AttachComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"comments": commentID}},
	)
	if err != nil {
		return storageErr(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoPostRepo) DetachComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"comments": commentID}},
	)
	if err != nil {
		return storageErr(err)
	}
	return nil
}

func (r *mongoPostRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// toggleLike is shared by posts and comments; both carry a `likes` set of
// user ids with identical semantics.
func toggleLike(ctx context.Context, coll *mongo.Collection, docID, userID primitive.ObjectID) (bool, int, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc struct {
		Likes []primitive.ObjectID `bson:"likes"`
	}
	err := coll.FindOneAndUpdate(ctx,
		bson.M{"_id": docID, "likes": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likes": userID}},
		after,
	).Decode(&doc)
	if err == nil {
		return true, len(doc.Likes), nil
	}
	if err != mongo.ErrNoDocuments {
		return false, 0, storageErr(err)
	}
	// already liked, or the document is gone
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"_id": docID},
		bson.M{"$pull": bson.M{"likes": userID}},
		after,
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, 0, apperrors.ErrNotFound
		}
		return false, 0, storageErr(err)
	}
	return false, len(doc.Likes), nil
}
