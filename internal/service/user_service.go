package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/models"
	"github.com/Aman121K/social-backend/internal/repository"
)

type UserService struct {
	users  repository.UserRepository
	logger *zap.SugaredLogger
}

func NewUserService(users repository.UserRepository, logger *zap.SugaredLogger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Profile(), nil
}

type ProfileUpdate struct {
	Name           *string
	Bio            *string
	Website        *string
	Phone          *string
	ProfilePicture *string
}

func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	fields := bson.M{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}
	if upd.Website != nil {
		fields["website"] = *upd.Website
	}
	if upd.Phone != nil {
		fields["phone"] = *upd.Phone
	}
	if upd.ProfilePicture != nil {
		fields["profile_picture"] = *upd.ProfilePicture
	}
	if len(fields) == 0 {
		return s.users.FindByID(ctx, id)
	}
	return s.users.UpdateProfile(ctx, id, fields)
}

// FollowResult reports the new edge state and both cardinalities after a
// toggle.
type FollowResult struct {
	IsFollowing    bool `json:"isFollowing"`
	Following      int  `json:"following"`
	TargetFollower int  `json:"targetFollowers"`
}

// ToggleFollow flips the actor->target edge. Self-follow is rejected before
// any write.
func (s *UserService) ToggleFollow(ctx context.Context, actorID, targetID primitive.ObjectID) (*FollowResult, error) {
	if actorID == targetID {
		return nil, apperrors.ErrInvalidTarget
	}
	// target must exist before we touch the actor's document
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return nil, err
	}
	following, err := s.users.ToggleFollow(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{
		IsFollowing:    following,
		Following:      len(actor.Following),
		TargetFollower: len(target.Followers),
	}, nil
}

func (s *UserService) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	return s.users.Delete(ctx, id)
}
