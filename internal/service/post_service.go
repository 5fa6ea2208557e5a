package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/models"
	"github.com/Aman121K/social-backend/internal/repository"
)

type PostService struct {
	posts  repository.PostRepository
	logger *zap.SugaredLogger
}

func NewPostService(posts repository.PostRepository, logger *zap.SugaredLogger) *PostService {
	return &PostService{posts: posts, logger: logger}
}

func (s *PostService) Create(ctx context.Context, userID primitive.ObjectID, image, caption, location string) (*models.Post, error) {
	p := &models.Post{
		UserID:   userID,
		Image:    image,
		Caption:  caption,
		Location: location,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) Feed(ctx context.Context, limit int64) ([]*models.Post, error) {
	return s.posts.List(ctx, limit)
}

func (s *PostService) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return s.posts.FindByID(ctx, id)
}

// LikeResult is shared by post and comment like toggles.
type LikeResult struct {
	IsLiked bool `json:"isLiked"`
	Likes   int  `json:"likes"`
}

func (s *PostService) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*LikeResult, error) {
	liked, count, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{IsLiked: liked, Likes: count}, nil
}

// Delete removes a post if userID owns it.
func (s *PostService) Delete(ctx context.Context, postID, userID primitive.ObjectID) error {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return apperrors.ErrForbidden
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// already gone, treat as done
			return nil
		}
		return err
	}
	return nil
}
