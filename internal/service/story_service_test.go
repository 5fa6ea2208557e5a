package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aman121K/social-backend/internal/apperrors"
)

func TestStoryExpiresAfterTTL(t *testing.T) {
	repo := newMemStoryRepo()
	svc := NewStoryService(repo, 24*time.Hour, testLogger())
	ctx := context.Background()

	owner := primitive.NewObjectID()
	st, err := svc.Create(ctx, owner, "story.jpg")
	require.NoError(t, err)
	assert.Equal(t, st.CreatedAt.Add(24*time.Hour), st.ExpiresAt)

	list, err := svc.ListByUser(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// past expiry the story vanishes from every read, deleted or not
	svc.now = func() time.Time { return st.ExpiresAt.Add(time.Second) }
	list, err = svc.ListByUser(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	feed, err := svc.Feed(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)

	err = svc.MarkViewed(ctx, st.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkViewedIdempotent(t *testing.T) {
	repo := newMemStoryRepo()
	svc := NewStoryService(repo, 24*time.Hour, testLogger())
	ctx := context.Background()

	st, err := svc.Create(ctx, primitive.NewObjectID(), "story.jpg")
	require.NoError(t, err)

	viewer := primitive.NewObjectID()
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.MarkViewed(ctx, st.ID, viewer))
	}

	stored, err := repo.FindByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Views, 1)
}

func TestStoryFeedGroupsByOwner(t *testing.T) {
	repo := newMemStoryRepo()
	svc := NewStoryService(repo, 24*time.Hour, testLogger())
	ctx := context.Background()

	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, a, "a.jpg")
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, b, "b.jpg")
	require.NoError(t, err)

	feed, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	total := 0
	for _, g := range feed {
		total += len(g.Stories)
	}
	assert.Equal(t, 3, total)
}

func TestStoryDeleteOwnership(t *testing.T) {
	repo := newMemStoryRepo()
	svc := NewStoryService(repo, 24*time.Hour, testLogger())
	ctx := context.Background()

	owner := primitive.NewObjectID()
	st, err := svc.Create(ctx, owner, "story.jpg")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, st.ID, primitive.NewObjectID()), apperrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, st.ID, owner))
}

func TestSweeperReclaimsExpired(t *testing.T) {
	repo := newMemStoryRepo()
	svc := NewStoryService(repo, 24*time.Hour, testLogger())
	ctx := context.Background()

	st, err := svc.Create(ctx, primitive.NewObjectID(), "story.jpg")
	require.NoError(t, err)

	n, err := repo.DeleteExpired(ctx, st.ExpiresAt.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
