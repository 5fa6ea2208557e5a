package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, handle string) (*models.User, error)
	SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error
	MarkVerified(ctx context.Context, id primitive.ObjectID, code string, now time.Time) (bool, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, code, hashed string, now time.Time) (bool, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
	ToggleFollow(ctx context.Context, actor, target primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoUserRepo struct {
	coll *mongo.Collection
}

func NewUserRepository(coll *mongo.Collection) UserRepository {
	return &mongoUserRepo{coll: coll}
}

func (r *mongoUserRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicateAccount
		}
		return storageErr(err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageErr(err)
	}
	return &u, nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepo) FindByEmailOrUsername(ctx context.Context, handle string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": handle},
		bson.M{"username": handle},
	}})
}

func (r *mongoUserRepo) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"otp":        code,
		"otp_expiry": expiry,
		"updated_at": time.Now().UTC(),
	}})
}

// MarkVerified flips the verification flag and consumes the OTP in a single
// conditional mutation. The filter only matches an unverified account still
// holding this unexpired code, so of two concurrent submits exactly one can
// consume it; the other reports false.
func (r *mongoUserRepo) MarkVerified(ctx context.Context, id primitive.ObjectID, code string, now time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "is_verified": false, "otp": code, "otp_expiry": bson.M{"$gt": now}},
		bson.M{
			"$set":   bson.M{"is_verified": true, "updated_at": now},
			"$unset": bson.M{"otp": "", "otp_expiry": ""},
		},
	)
	if err != nil {
		return false, storageErr(err)
	}
	return res.MatchedCount == 1, nil
}

// UpdatePassword replaces the credential and consumes the OTP under the same
// conditional-filter contract as MarkVerified.
func (r *mongoUserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, code, hashed string, now time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "otp": code, "otp_expiry": bson.M{"$gt": now}},
		bson.M{
			"$set":   bson.M{"password": hashed, "updated_at": now},
			"$unset": bson.M{"otp": "", "otp_expiry": ""},
		},
	)
	if err != nil {
		return false, storageErr(err)
	}
	return res.MatchedCount == 1, nil
}

func (r *mongoUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	fields["updated_at"] = time.Now().UTC()
	if err := r.updateOne(ctx, id, bson.M{"$set": fields}); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *mongoUserRepo) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return storageErr(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ToggleFollow flips the actor->target follow edge. Each side is a single
// conditional mutation: the add only matches when the edge is absent, so
// concurrent toggles cannot duplicate entries or lose updates. The mirror
// write on the other document is independent; a crash in between leaves a
// one-sided edge that the next toggle repairs.
func (r *mongoUserRepo) ToggleFollow(ctx context.Context, actor, target primitive.ObjectID) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": actor, "following": bson.M{"$ne": target}},
		bson.M{"$addToSet": bson.M{"following": target}},
	)
	if err != nil {
		return false, storageErr(err)
	}
	if res.ModifiedCount == 1 {
		// followed; mirror on target
		if _, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": target},
			bson.M{"$addToSet": bson.M{"followers": actor}},
		); err != nil {
			return true, storageErr(err)
		}
		return true, nil
	}
	// already following (or actor missing): unfollow both sides
	res, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": actor},
		bson.M{"$pull": bson.M{"following": target}},
	)
	if err != nil {
		return false, storageErr(err)
	}
	if res.MatchedCount == 0 {
		return false, apperrors.ErrNotFound
	}
	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": target},
		bson.M{"$pull": bson.M{"followers": actor}},
	); err != nil {
		return false, storageErr(err)
	}
	return false, nil
}

// Delete removes the account and scrubs its id from every follower and
// following set.
func (r *mongoUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.coll.UpdateMany(ctx,
		bson.M{"followers": id},
		bson.M{"$pull": bson.M{"followers": id}},
	); err != nil {
		return storageErr(err)
	}
	if _, err := r.coll.UpdateMany(ctx,
		bson.M{"following": id},
		bson.M{"$pull": bson.M{"following": id}},
	); err != nil {
		return storageErr(err)
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
