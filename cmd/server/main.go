package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Aman121K/social-backend/internal/config"
	"github.com/Aman121K/social-backend/internal/email"
	"github.com/Aman121K/social-backend/internal/handlers"
	"github.com/Aman121K/social-backend/internal/hash"
	"github.com/Aman121K/social-backend/internal/logger"
	"github.com/Aman121K/social-backend/internal/middleware"
	"github.com/Aman121K/social-backend/internal/relay"
	"github.com/Aman121K/social-backend/internal/repository"
	"github.com/Aman121K/social-backend/internal/routes"
	"github.com/Aman121K/social-backend/internal/service"
	"github.com/Aman121K/social-backend/internal/token"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(logger.Config{Development: cfg.Server.Development})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zl.Sync()

	mc, err := repository.NewMongoClient(cfg)
	if err != nil {
		zl.Fatalw("mongo init", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	db := mc.Database(cfg.Mongo.Database)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			cancel()
			zl.Fatalw("index init", "err", err)
		}
		cancel()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	users := repository.NewUserRepository(db.Collection("users"))
	posts := repository.NewPostRepository(db.Collection("posts"))
	comments := repository.NewCommentRepository(db.Collection("comments"))
	stories := repository.NewStoryRepository(db.Collection("stories"))
	chats := repository.NewChatRepository(db.Collection("chats"))

	tokens := token.NewManager(cfg.JWT.Secret, cfg.SessionTTL)
	mailer := email.NewBrevoDispatcher(cfg.Email.APIKey, cfg.Email.SenderEmail, cfg.Email.SenderName, zl)
	hasher := hash.NewBcrypt()

	hub := relay.NewHub()
	bridge := relay.NewBridge(rdb, cfg.Redis.Prefix)

	authSvc := service.NewAuthService(users, mailer, hasher, tokens, zl)
	userSvc := service.NewUserService(users, zl)
	postSvc := service.NewPostService(posts, zl)
	commentSvc := service.NewCommentService(comments, posts, zl)
	storySvc := service.NewStoryService(stories, cfg.StoryTTL, zl)
	chatSvc := service.NewChatService(chats, bridge, zl)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go bridge.Run(rootCtx, hub)
	go storySvc.RunSweeper(rootCtx, cfg.SweepInterval)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	app.Use(cors.New())
	app.Use(fiberlogger.New())

	limiter := middleware.NewRateLimiter(rdb, cfg.Redis.Prefix+":rl", cfg.Limits.OTPPerWindow, cfg.LimitWindow)

	routes.Register(app, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authSvc),
		Users:   handlers.NewUserHandler(userSvc),
		Posts:   handlers.NewPostHandler(postSvc),
		Comment: handlers.NewCommentHandler(commentSvc),
		Stories: handlers.NewStoryHandler(storySvc),
		Chats:   handlers.NewChatHandler(chatSvc),
		WS:      handlers.NewWSHandler(tokens, hub, bridge, zl),
	}, tokens, limiter)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zl.Fatalw("server listen", "err", err)
		}
	}()
	zl.Infow("server started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	zl.Infow("server stopped")
}
