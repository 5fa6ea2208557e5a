package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aman121K/social-backend/internal/service"
)

type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req struct {
		PostID string `json:"postId"`
		Text   string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.PostID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Post ID is required"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Comment text is required"})
	}
	if len(req.Text) > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Comment too long"})
	}
	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Post not found"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	cm, err := h.comments.Create(ctx, postID, userID, req.Text)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cm)
}

func (h *CommentHandler) ListByPost(c *fiber.Ctx) error {
	postID, err := paramObjectID(c, "postId")
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	list, err := h.comments.ListByPost(ctx, postID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(list)
}

func (h *CommentHandler) ToggleLike(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	commentID, err := paramObjectID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	res, err := h.comments.ToggleLike(ctx, commentID, userID)
	if err != nil {
		return respondErr(c, err)
	}
	msg := "Comment unliked"
	if res.IsLiked {
		msg = "Comment liked"
	}
	return c.JSON(fiber.Map{
		"message": msg,
		"likes":   res.Likes,
		"isLiked": res.IsLiked,
	})
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	commentID, err := paramObjectID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	if err := h.comments.Delete(ctx, commentID, userID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}
