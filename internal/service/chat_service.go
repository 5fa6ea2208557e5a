package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/models"
	"github.com/Aman121K/social-backend/internal/relay"
	"github.com/Aman121K/social-backend/internal/repository"
)

type ChatService struct {
	chats  repository.ChatRepository
	relay  relay.Publisher
	logger *zap.SugaredLogger
}

func NewChatService(chats repository.ChatRepository, pub relay.Publisher, logger *zap.SugaredLogger) *ChatService {
	return &ChatService{chats: chats, relay: pub, logger: logger}
}

func (s *ChatService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Chat, error) {
	return s.chats.ListByParticipant(ctx, userID)
}

// CreateOrGet returns the existing 1:1 chat between the two users or
// creates it. The repository upsert keys on the sorted pair, so concurrent
// first messages cannot create duplicates.
func (s *ChatService) CreateOrGet(ctx context.Context, userID, receiverID primitive.ObjectID) (*models.Chat, error) {
	return s.chats.CreateOrGet(ctx, userID, receiverID)
}

func (s *ChatService) Get(ctx context.Context, chatID, userID primitive.ObjectID) (*models.Chat, error) {
	c, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(userID) {
		return nil, apperrors.ErrForbidden
	}
	return c, nil
}

// SendMessage persists the message, then notifies the other participants
// through the relay. The write commits regardless of relay delivery.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID primitive.ObjectID, text string) (*models.Chat, error) {
	c, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(senderID) {
		return nil, apperrors.ErrForbidden
	}
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	if err := s.chats.AppendMessage(ctx, chatID, msg); err != nil {
		return nil, err
	}
	c.Messages = append(c.Messages, msg)

	if s.relay != nil {
		payload, _ := json.Marshal(map[string]any{
			"type":      "receive-message",
			"chatId":    chatID.Hex(),
			"senderId":  senderID.Hex(),
			"message":   text,
			"timestamp": msg.Timestamp,
		})
		for _, p := range c.Participants {
			if p == senderID {
				continue
			}
			if err := s.relay.Publish(ctx, p.Hex(), payload); err != nil {
				s.logger.Warnw("relay publish failed", "user", p.Hex(), "err", err)
			}
		}
	}
	return c, nil
}
