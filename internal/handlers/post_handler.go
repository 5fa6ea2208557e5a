package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Aman121K/social-backend/internal/service"
)

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req struct {
		Image    string `json:"image"`
		Caption  string `json:"caption"`
		Location string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Image is required"})
	}
	if len(req.Caption) > 2200 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Caption too long"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	p, err := h.posts.Create(ctx, userID, req.Image, req.Caption, req.Location)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *PostHandler) Feed(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 50))
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	posts, err := h.posts.Feed(ctx, limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(posts)
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	p, err := h.posts.Get(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(p)
}

func (h *PostHandler) ToggleLike(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	postID, err := paramObjectID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	res, err := h.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return respondErr(c, err)
	}
	msg := "Post unliked"
	if res.IsLiked {
		msg = "Post liked"
	}
	return c.JSON(fiber.Map{
		"message": msg,
		"likes":   res.Likes,
		"isLiked": res.IsLiked,
	})
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	postID, err := paramObjectID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	if err := h.posts.Delete(ctx, postID, userID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
