package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/models"
	"github.com/Aman121K/social-backend/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	logger   *zap.SugaredLogger
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, logger *zap.SugaredLogger) *CommentService {
	return &CommentService{comments: comments, posts: posts, logger: logger}
}

// Create stores the comment and links it to its post.
func (s *CommentService) Create(ctx context.Context, postID, userID primitive.ObjectID, text string) (*models.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, err
	}
	c := &models.Comment{
		PostID: postID,
		UserID: userID,
		Text:   text,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.posts.AttachComment(ctx, postID, c.ID); err != nil {
		// comment exists but the post link failed; surface it, the comment
		// remains listable by post id
		s.logger.Warnw("attach comment failed", "post", postID.Hex(), "comment", c.ID.Hex(), "err", err)
	}
	return c, nil
}

func (s *CommentService) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID primitive.ObjectID) (*LikeResult, error) {
	liked, count, err := s.comments.ToggleLike(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{IsLiked: liked, Likes: count}, nil
}

// Delete removes a comment if userID owns it and unlinks it from the post.
func (s *CommentService) Delete(ctx context.Context, commentID, userID primitive.ObjectID) error {
	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return apperrors.ErrForbidden
	}
	if err := s.posts.DetachComment(ctx, c.PostID, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}
