package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Aman121K/social-backend/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	p, err := h.users.GetProfile(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(p)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req struct {
		Name           *string `json:"name"`
		Bio            *string `json:"bio"`
		Website        *string `json:"website"`
		Phone          *string `json:"phone"`
		ProfilePicture *string `json:"profilePicture"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if req.Name != nil && *req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Name cannot be empty"})
	}
	if req.Bio != nil && len(*req.Bio) > 150 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Bio too long"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	u, err := h.users.UpdateProfile(ctx, userID, service.ProfileUpdate{
		Name:           req.Name,
		Bio:            req.Bio,
		Website:        req.Website,
		Phone:          req.Phone,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    userPayload(u),
	})
}

func (h *UserHandler) ToggleFollow(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	targetID, err := paramObjectID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	res, err := h.users.ToggleFollow(ctx, userID, targetID)
	if err != nil {
		return respondErr(c, err)
	}
	msg := "Unfollowed successfully"
	if res.IsFollowing {
		msg = "Followed successfully"
	}
	return c.JSON(fiber.Map{
		"message":         msg,
		"isFollowing":     res.IsFollowing,
		"following":       res.Following,
		"targetFollowers": res.TargetFollower,
	})
}

func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()
	if err := h.users.DeleteAccount(ctx, userID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}
