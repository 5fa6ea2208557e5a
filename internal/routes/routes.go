package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aman121K/social-backend/internal/handlers"
	"github.com/Aman121K/social-backend/internal/middleware"
	"github.com/Aman121K/social-backend/internal/token"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Posts   *handlers.PostHandler
	Comment *handlers.CommentHandler
	Stories *handlers.StoryHandler
	Chats   *handlers.ChatHandler
	WS      *handlers.WSHandler
}

// Register wires every endpoint. The OTP-dispatching auth routes sit behind
// the rate limiter; everything outside /api/auth requires a session token.
func Register(app *fiber.App, h Handlers, tokens *token.Manager, limiter *middleware.RateLimiter) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authed := middleware.Auth(tokens)

	auth := app.Group("/api/auth")
	auth.Post("/signup", limiter.ByIP(), h.Auth.Signup)
	auth.Post("/verify-otp", h.Auth.VerifyOTP)
	auth.Post("/resend-otp", limiter.ByIP(), h.Auth.ResendOTP)
	auth.Post("/signin", h.Auth.Signin)
	auth.Post("/forgot-password", limiter.ByIP(), h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Get("/me", authed, h.Auth.Me)
	auth.Post("/logout", authed, h.Auth.Logout)

	users := app.Group("/api/users", authed)
	users.Put("/profile", h.Users.UpdateProfile)
	users.Delete("/delete-account", h.Users.DeleteAccount)
	users.Get("/:id", h.Users.GetProfile)
	users.Post("/:id/follow", h.Users.ToggleFollow)

	posts := app.Group("/api/posts", authed)
	posts.Post("/", h.Posts.Create)
	posts.Get("/", h.Posts.Feed)
	posts.Get("/:id", h.Posts.Get)
	posts.Post("/:id/like", h.Posts.ToggleLike)
	posts.Delete("/:id", h.Posts.Delete)

	comments := app.Group("/api/comments", authed)
	comments.Post("/", h.Comment.Create)
	comments.Get("/post/:postId", h.Comment.ListByPost)
	comments.Post("/:id/like", h.Comment.ToggleLike)
	comments.Delete("/:id", h.Comment.Delete)

	stories := app.Group("/api/stories", authed)
	stories.Post("/", h.Stories.Create)
	stories.Get("/", h.Stories.Feed)
	stories.Get("/user/:userId", h.Stories.ListByUser)
	stories.Post("/:id/view", h.Stories.MarkViewed)
	stories.Delete("/:id", h.Stories.Delete)

	chat := app.Group("/api/chat", authed)
	chat.Get("/", h.Chats.List)
	chat.Post("/", h.Chats.CreateOrGet)
	chat.Get("/:chatId", h.Chats.Get)
	chat.Post("/:chatId/message", h.Chats.SendMessage)

	app.Get("/ws", h.WS.Upgrade, websocket.New(h.WS.Serve))
}
