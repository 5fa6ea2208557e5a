package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aman121K/social-backend/internal/apperrors"
)

func commentFixture(t *testing.T) (*CommentService, *memPostRepo, primitive.ObjectID) {
	t.Helper()
	posts := newMemPostRepo()
	svc := NewCommentService(newMemCommentRepo(), posts, testLogger())
	p, err := NewPostService(posts, testLogger()).Create(context.Background(), primitive.NewObjectID(), "img.jpg", "", "")
	require.NoError(t, err)
	return svc, posts, p.ID
}

func TestCreateCommentLinksPost(t *testing.T) {
	svc, posts, postID := commentFixture(t)
	ctx := context.Background()

	author := primitive.NewObjectID()
	c, err := svc.Create(ctx, postID, author, "nice shot")
	require.NoError(t, err)

	p, err := posts.FindByID(ctx, postID)
	require.NoError(t, err)
	assert.Contains(t, p.Comments, c.ID)
}

func TestCreateCommentUnknownPost(t *testing.T) {
	svc, _, _ := commentFixture(t)
	_, err := svc.Create(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "text")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCommentLikeToggle(t *testing.T) {
	svc, _, postID := commentFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, postID, primitive.NewObjectID(), "text")
	require.NoError(t, err)

	actor := primitive.NewObjectID()
	res, err := svc.ToggleLike(ctx, c.ID, actor)
	require.NoError(t, err)
	assert.True(t, res.IsLiked)
	assert.Equal(t, 1, res.Likes)

	res, err = svc.ToggleLike(ctx, c.ID, actor)
	require.NoError(t, err)
	assert.False(t, res.IsLiked)
	assert.Equal(t, 0, res.Likes)
}

func TestDeleteCommentOwnershipAndUnlink(t *testing.T) {
	svc, posts, postID := commentFixture(t)
	ctx := context.Background()

	author := primitive.NewObjectID()
	c, err := svc.Create(ctx, postID, author, "text")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, c.ID, primitive.NewObjectID()), apperrors.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, c.ID, author))
	p, err := posts.FindByID(ctx, postID)
	require.NoError(t, err)
	assert.NotContains(t, p.Comments, c.ID)
}
