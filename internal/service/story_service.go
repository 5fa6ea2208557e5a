package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/models"
	"github.com/Aman121K/social-backend/internal/repository"
)

// StoryService applies the ephemeral content policy: a story is visible for
// 24 hours from creation, enforced at read time; the sweeper only reclaims
// storage.
type StoryService struct {
	stories repository.StoryRepository
	ttl     time.Duration
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewStoryService(stories repository.StoryRepository, ttl time.Duration, logger *zap.SugaredLogger) *StoryService {
	return &StoryService{
		stories: stories,
		ttl:     ttl,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *StoryService) Create(ctx context.Context, userID primitive.ObjectID, image string) (*models.Story, error) {
	now := s.now()
	st := &models.Story{
		UserID:    userID,
		Image:     image,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.stories.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Feed returns unexpired stories grouped by owner, newest first within each
// group.
func (s *StoryService) Feed(ctx context.Context) ([]*models.UserStories, error) {
	stories, err := s.stories.ListActive(ctx, s.now())
	if err != nil {
		return nil, err
	}
	grouped := map[primitive.ObjectID]*models.UserStories{}
	order := []primitive.ObjectID{}
	for _, st := range stories {
		g, ok := grouped[st.UserID]
		if !ok {
			g = &models.UserStories{UserID: st.UserID}
			grouped[st.UserID] = g
			order = append(order, st.UserID)
		}
		g.Stories = append(g.Stories, st)
	}
	out := make([]*models.UserStories, 0, len(order))
	for _, id := range order {
		out = append(out, grouped[id])
	}
	return out, nil
}

func (s *StoryService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Story, error) {
	return s.stories.ListActiveByUser(ctx, userID, s.now())
}

// MarkViewed records that viewerID saw the story. Expired stories are
// invisible here too, even if the sweeper has not reclaimed them yet.
func (s *StoryService) MarkViewed(ctx context.Context, storyID, viewerID primitive.ObjectID) error {
	st, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return err
	}
	if st.Expired(s.now()) {
		return apperrors.ErrNotFound
	}
	return s.stories.MarkViewed(ctx, storyID, viewerID)
}

func (s *StoryService) Delete(ctx context.Context, storyID, userID primitive.ObjectID) error {
	st, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return err
	}
	if st.UserID != userID {
		return apperrors.ErrForbidden
	}
	return s.stories.Delete(ctx, storyID)
}

// RunSweeper deletes expired stories on the given interval until ctx is
// cancelled.
func (s *StoryService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.stories.DeleteExpired(ctx, s.now())
			if err != nil {
				s.logger.Errorw("story sweep failed", "err", err)
				continue
			}
			if n > 0 {
				s.logger.Infow("story sweep", "deleted", n)
			}
		}
	}
}
