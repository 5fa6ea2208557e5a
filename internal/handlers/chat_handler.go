package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aman121K/social-backend/internal/service"
)

type ChatHandler struct {
	chats *service.ChatService
}

func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	chats, err := h.chats.ListForUser(ctx, userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(chats)
}

func (h *ChatHandler) CreateOrGet(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req struct {
		ReceiverID string `json:"receiverId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if req.ReceiverID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Receiver ID is required"})
	}
	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Receiver ID is required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	chat, err := h.chats.CreateOrGet(ctx, userID, receiverID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	chatID, err := paramObjectID(c, "chatId")
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	chat, err := h.chats.Get(ctx, chatID, userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	chatID, err := paramObjectID(c, "chatId")
	if err != nil {
		return respondErr(c, err)
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Message text is required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	chat, err := h.chats.SendMessage(ctx, chatID, userID, req.Text)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(chat)
}
