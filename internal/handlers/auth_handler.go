package handlers

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Aman121K/social-backend/internal/apperrors"
	"github.com/Aman121K/social-backend/internal/models"
	"github.com/Aman121K/social-backend/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

func userPayload(u *models.User) fiber.Map {
	return fiber.Map{
		"id":             u.ID.Hex(),
		"name":           u.Name,
		"username":       u.Username,
		"email":          u.Email,
		"profilePicture": u.ProfilePicture,
		"bio":            u.Bio,
		"website":        u.Website,
		"phone":          u.Phone,
	}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	switch {
	case req.Name == "":
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Name is required"})
	case len(req.Username) < 3:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Username must be at least 3 characters"})
	case !validEmail(req.Email):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please enter a valid email"})
	case len(req.Password) < 6:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()
	userID, err := h.auth.Register(ctx, req.Name, req.Username, req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully. Please verify your email with OTP.",
		"userId":  userID,
	})
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if !validEmail(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please enter a valid email"})
	}
	if len(req.OTP) != 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "OTP must be 6 digits"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	tok, u, err := h.auth.VerifyOTP(ctx, req.Email, req.OTP)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Email verified successfully",
		"token":   tok,
		"user":    userPayload(u),
	})
}

func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if !validEmail(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please enter a valid email"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()
	if err := h.auth.ResendOTP(ctx, req.Email); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "OTP sent successfully"})
}

func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if !validEmail(req.Email) || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	tok, u, err := h.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   tok,
		"user":    userPayload(u),
	})
}

const forgotPasswordReply = "If an account exists with this email, a password reset link has been sent."

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()
	if err := h.auth.ForgotPassword(ctx, req.Email); err != nil {
		// existence is hidden; only infrastructure failures surface
		if errors.Is(err, apperrors.ErrEmailDelivery) || errors.Is(err, apperrors.ErrStorage) {
			return respondErr(c, err)
		}
	}
	return c.JSON(fiber.Map{"message": forgotPasswordReply})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email is required"})
	}
	if len(req.OTP) != 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "OTP must be 6 digits"})
	}
	if len(req.NewPassword) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	if err := h.auth.ResetPassword(ctx, req.Email, req.OTP, req.NewPassword); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	raw, _ := c.Locals("user_id").(string)
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	u, err := h.auth.Me(ctx, raw)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(userPayload(u))
}

// Logout is advisory: the session token is stateless, the client discards it.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
