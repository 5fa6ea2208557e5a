package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/models"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// memUserRepo mirrors the mongo repository's set semantics in memory.
type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email || e.Username == u.Username {
			return apperrors.ErrDuplicateAccount
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) FindByEmailOrUsername(_ context.Context, handle string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == handle || u.Username == handle {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) SetOTP(_ context.Context, id primitive.ObjectID, code string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.OTP = code
	u.OTPExpiry = &expiry
	return nil
}

func (r *memUserRepo) MarkVerified(_ context.Context, id primitive.ObjectID, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.IsVerified || u.OTP == "" || u.OTP != code || u.OTPExpiry == nil || !u.OTPExpiry.After(now) {
		return false, nil
	}
	u.IsVerified = true
	u.OTP = ""
	u.OTPExpiry = nil
	return true, nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, code, hashed string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.OTP == "" || u.OTP != code || u.OTPExpiry == nil || !u.OTPExpiry.After(now) {
		return false, nil
	}
	u.Password = hashed
	u.OTP = ""
	u.OTPExpiry = nil
	return true, nil
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if v, ok := fields["name"]; ok {
		u.Name = v.(string)
	}
	if v, ok := fields["bio"]; ok {
		u.Bio = v.(string)
	}
	if v, ok := fields["website"]; ok {
		u.Website = v.(string)
	}
	if v, ok := fields["phone"]; ok {
		u.Phone = v.(string)
	}
	if v, ok := fields["profile_picture"]; ok {
		u.ProfilePicture = v.(string)
	}
	return u, nil
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, e := range ids {
		if e == id {
			return true
		}
	}
	return false
}

func remove(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, e := range ids {
		if e != id {
			out = append(out, e)
		}
	}
	return out
}

func (r *memUserRepo) ToggleFollow(_ context.Context, actor, target primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.users[actor]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	t, ok := r.users[target]
	if !ok {
		return false, apperrors.ErrNotFound
	}
	if contains(a.Following, target) {
		a.Following = remove(a.Following, target)
		t.Followers = remove(t.Followers, actor)
		return false, nil
	}
	a.Following = append(a.Following, target)
	t.Followers = append(t.Followers, actor)
	return true, nil
}

func (r *memUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.users, id)
	for _, u := range r.users {
		u.Followers = remove(u.Followers, id)
		u.Following = remove(u.Following, id)
	}
	return nil
}

// staleUserReads serves email/handle lookups from a snapshot taken at
// construction while writes and id lookups hit the live repo, modeling two
// requests that both read the same document version before either writes.
type staleUserReads struct {
	*memUserRepo
	snapshot map[primitive.ObjectID]*models.User
}

func snapshotUserReads(r *memUserRepo) *staleUserReads {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := map[primitive.ObjectID]*models.User{}
	for id, u := range r.users {
		cp := *u
		if u.OTPExpiry != nil {
			e := *u.OTPExpiry
			cp.OTPExpiry = &e
		}
		snap[id] = &cp
	}
	return &staleUserReads{memUserRepo: r, snapshot: snap}
}

func (r *staleUserReads) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.snapshot {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *staleUserReads) FindByEmailOrUsername(_ context.Context, handle string) (*models.User, error) {
	for _, u := range r.snapshot {
		if u.Email == handle || u.Username == handle {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// fakeMailer records dispatches and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

type sentMail struct {
	To      string
	Code    string
	Purpose string
}

func (m *fakeMailer) SendOTP(_ context.Context, to, code, purpose string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return apperrors.ErrEmailDelivery
	}
	m.sent = append(m.sent, sentMail{To: to, Code: code, Purpose: purpose})
	return nil
}

func (m *fakeMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// memPostRepo implements PostRepository with set-semantics likes.
type memPostRepo struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*models.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[primitive.ObjectID]*models.Post{}}
}

func (r *memPostRepo) Create(_ context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []primitive.ObjectID{}
	}
	r.posts[p.ID] = p
	return nil
}

func (r *memPostRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (r *memPostRepo) List(_ context.Context, _ int64) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Post{}
	for _, p := range r.posts {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPostRepo) ToggleLike(_ context.Context, postID, userID primitive.ObjectID) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, 0, apperrors.ErrNotFound
	}
	if contains(p.Likes, userID) {
		p.Likes = remove(p.Likes, userID)
		return false, len(p.Likes), nil
	}
	p.Likes = append(p.Likes, userID)
	return true, len(p.Likes), nil
}

func (r *memPostRepo) AttachComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !contains(p.Comments, commentID) {
		p.Comments = append(p.Comments, commentID)
	}
	return nil
}

func (r *memPostRepo) DetachComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[postID]; ok {
		p.Comments = remove(p.Comments, commentID)
	}
	return nil
}

func (r *memPostRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

// memCommentRepo implements CommentRepository.
type memCommentRepo struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*models.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: map[primitive.ObjectID]*models.Comment{}}
}

func (r *memCommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	if c.Likes == nil {
		c.Likes = []primitive.ObjectID{}
	}
	r.comments[c.ID] = c
	return nil
}

func (r *memCommentRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

func (r *memCommentRepo) ListByPost(_ context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCommentRepo) ToggleLike(_ context.Context, commentID, userID primitive.ObjectID) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return false, 0, apperrors.ErrNotFound
	}
	if contains(c.Likes, userID) {
		c.Likes = remove(c.Likes, userID)
		return false, len(c.Likes), nil
	}
	c.Likes = append(c.Likes, userID)
	return true, len(c.Likes), nil
}

func (r *memCommentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

// memStoryRepo implements StoryRepository with query-time expiry.
type memStoryRepo struct {
	mu      sync.Mutex
	stories map[primitive.ObjectID]*models.Story
}

func newMemStoryRepo() *memStoryRepo {
	return &memStoryRepo{stories: map[primitive.ObjectID]*models.Story{}}
}

func (r *memStoryRepo) Create(_ context.Context, s *models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = primitive.NewObjectID()
	if s.Views == nil {
		s.Views = []primitive.ObjectID{}
	}
	r.stories[s.ID] = s
	return nil
}

func (r *memStoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return s, nil
}

func (r *memStoryRepo) ListActive(_ context.Context, now time.Time) ([]*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Story{}
	for _, s := range r.stories {
		if s.ExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memStoryRepo) ListActiveByUser(_ context.Context, userID primitive.ObjectID, now time.Time) ([]*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Story{}
	for _, s := range r.stories {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memStoryRepo) MarkViewed(_ context.Context, storyID, viewerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[storyID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !contains(s.Views, viewerID) {
		s.Views = append(s.Views, viewerID)
	}
	return nil
}

func (r *memStoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stories[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.stories, id)
	return nil
}

func (r *memStoryRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.stories {
		if !s.ExpiresAt.After(now) {
			delete(r.stories, id)
			n++
		}
	}
	return n, nil
}

// memChatRepo implements ChatRepository.
type memChatRepo struct {
	mu    sync.Mutex
	chats map[primitive.ObjectID]*models.Chat
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{chats: map[primitive.ObjectID]*models.Chat{}}
}

func (r *memChatRepo) ListByParticipant(_ context.Context, userID primitive.ObjectID) ([]*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Chat{}
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memChatRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	// decoded documents are copies; the fake behaves the same
	cp := *c
	cp.Messages = append([]models.ChatMessage{}, c.Messages...)
	return &cp, nil
}

func (r *memChatRepo) CreateOrGet(_ context.Context, a, b primitive.ObjectID) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chats {
		if c.HasParticipant(a) && c.HasParticipant(b) {
			return c, nil
		}
	}
	c := &models.Chat{
		ID:           primitive.NewObjectID(),
		Participants: []primitive.ObjectID{a, b},
		Messages:     []models.ChatMessage{},
		CreatedAt:    time.Now().UTC(),
	}
	c.UpdatedAt = c.CreatedAt
	r.chats[c.ID] = c
	return c, nil
}

func (r *memChatRepo) AppendMessage(_ context.Context, chatID primitive.ObjectID, msg models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// capturePublisher records relay publishes.
type capturePublisher struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{published: map[string][][]byte{}}
}

func (p *capturePublisher) Publish(_ context.Context, userID string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published[userID] = append(p.published[userID], payload)
	return nil
}
