// Package main runs the church operations HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/escalei/backend/config"
	"github.com/escalei/backend/internal/areas"
	"github.com/escalei/backend/internal/auth"
	"github.com/escalei/backend/internal/availability"
	"github.com/escalei/backend/internal/chat"
	"github.com/escalei/backend/internal/invites"
	"github.com/escalei/backend/internal/middleware"
	"github.com/escalei/backend/internal/realtime"
	"github.com/escalei/backend/internal/schedules"
	"github.com/escalei/backend/internal/scheduling"
	"github.com/escalei/backend/internal/songs"
	"github.com/escalei/backend/internal/worker"
	"github.com/escalei/backend/pkg/database"
	"github.com/escalei/backend/pkg/email"
	"github.com/escalei/backend/pkg/queue"
	"github.com/escalei/backend/pkg/redis"
	"github.com/escalei/backend/pkg/response"
	"github.com/escalei/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			AvatarsBucket:        cfg.AWS.AvatarsBucket,
			CoversBucket:         cfg.AWS.CoversBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, s3Client, logger)

	// Areas, roles and memberships
	areaRepo := areas.NewRepository(pool)
	areaHandler := areas.NewHandler(areaRepo, s3Client)

	// Availability
	availRepo := availability.NewRepository(pool)
	availHandler := availability.NewHandler(availRepo)

	// Schedules and the assignment engine
	schedRepo := schedules.NewRepository(pool)
	engine := scheduling.NewEngine(areaRepo, availRepo, schedRepo, logger)
	locker := scheduling.NewRedisLocker(rdb.Client)
	schedService := scheduling.NewService(schedRepo, engine, schedRepo, locker, logger)
	schedHandler := schedules.NewHandler(schedRepo, schedService, jobQueue, logger)

	// Invites
	inviteRepo := invites.NewRepository(pool)
	inviteHandler := invites.NewHandler(inviteRepo, areaRepo, jobQueue, logger)

	// Songs
	songRepo := songs.NewRepository(pool)
	songHandler := songs.NewHandler(songRepo)

	// Chat
	chatRepo := chat.NewRepository(pool)
	chatHandler := chat.NewHandler(chatRepo, areaRepo)

	// Outgoing mail
	var sender email.Sender
	if cfg.Email.APIKey != "" {
		sender = email.NewSendgridSender(cfg.Email.APIKey, cfg.App.Name, cfg.Email.FromName, cfg.Email.FromAddress, logger)
	} else {
		sender = email.NewLogSender(logger)
	}
	notifier := worker.NewNotificationProcessor(schedRepo, sender, jobQueue, cfg.App.BaseURL, logger)

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Profile
		api.GET("/auth/me", authHandler.Me)
		api.PATCH("/auth/me", authHandler.UpdateProfile)
		api.POST("/auth/me/avatar", authHandler.UploadAvatar)

		// Users
		api.GET("/users", middleware.RequireRole("admin", "leader"), authHandler.List)
		api.PATCH("/users/:id/role", middleware.RequireRole("admin"), authHandler.SetRole)

		// Availability (owner or admin; enforced in handler)
		api.GET("/users/:id/availability/weekly", availHandler.ListWeekly)
		api.PUT("/users/:id/availability/weekly", availHandler.UpsertWeekly)
		api.DELETE("/users/:id/availability/weekly", availHandler.DeleteWeekly)
		api.GET("/users/:id/availability/exceptions", availHandler.ListExceptions)
		api.PUT("/users/:id/availability/exceptions", availHandler.UpsertException)
		api.DELETE("/users/:id/availability/exceptions/:exceptionId", availHandler.DeleteException)

		// Areas and roles
		api.GET("/areas", areaHandler.List)
		api.POST("/areas", middleware.RequireRole("admin", "leader"), areaHandler.Create)
		api.GET("/areas/:id", areaHandler.GetByID)
		api.PATCH("/areas/:id", middleware.RequireRole("admin", "leader"), areaHandler.Update)
		api.DELETE("/areas/:id", middleware.RequireRole("admin"), areaHandler.Delete)
		api.POST("/areas/:id/cover", middleware.RequireRole("admin", "leader"), areaHandler.UploadCover)
		api.GET("/areas/:id/roles", areaHandler.ListRoles)
		api.POST("/areas/:id/roles", middleware.RequireRole("admin", "leader"), areaHandler.CreateRole)
		api.DELETE("/areas/:id/roles/:roleId", middleware.RequireRole("admin", "leader"), areaHandler.DeleteRole)

		// Membership and role assignments
		api.GET("/areas/:id/members", areaHandler.ListMembers)
		api.POST("/areas/:id/members", middleware.RequireRole("admin", "leader"), areaHandler.AddMember)
		api.DELETE("/areas/:id/members/:userId", middleware.RequireRole("admin", "leader"), areaHandler.RemoveMember)
		api.POST("/areas/:id/roles/:roleId/assignments", middleware.RequireRole("admin", "leader"), areaHandler.AssignRole)
		api.DELETE("/areas/:id/roles/:roleId/assignments/:userId", middleware.RequireRole("admin", "leader"), areaHandler.UnassignRole)

		// Invites
		api.GET("/areas/:id/invites", middleware.RequireRole("admin", "leader"), inviteHandler.ListByArea)
		api.POST("/areas/:id/invites", middleware.RequireRole("admin", "leader"), inviteHandler.Create)
		api.DELETE("/areas/:id/invites/:inviteId", middleware.RequireRole("admin", "leader"), inviteHandler.Delete)
		api.POST("/invites/:code/accept", inviteHandler.Accept)

		// Schedules and generation
		api.GET("/schedules", schedHandler.List)
		api.POST("/schedules", middleware.RequireRole("admin", "leader"), schedHandler.Create)
		api.GET("/schedules/:id", schedHandler.GetByID)
		api.PATCH("/schedules/:id", middleware.RequireRole("admin", "leader"), schedHandler.Update)
		api.DELETE("/schedules/:id", middleware.RequireRole("admin", "leader"), schedHandler.Delete)
		api.GET("/schedules/:id/assignments", schedHandler.ListAssignments)
		api.POST("/schedules/:id/generate", middleware.RequireRole("admin", "leader"), schedHandler.Generate)
		api.POST("/schedules/:id/publish", middleware.RequireRole("admin", "leader"), schedHandler.Publish)

		// Songs
		api.GET("/areas/:id/songs", songHandler.ListByArea)
		api.POST("/areas/:id/songs", middleware.RequireRole("admin", "leader"), songHandler.Create)
		api.GET("/songs/:id", songHandler.GetByID)
		api.PATCH("/songs/:id", middleware.RequireRole("admin", "leader"), songHandler.Update)
		api.DELETE("/songs/:id", middleware.RequireRole("admin", "leader"), songHandler.Delete)

		// Chat history
		api.GET("/areas/:id/messages", chatHandler.History)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate, areaRepo, chatRepo))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (publish notifications, invite emails)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go notifier.Run(workerCtx)
	logger.Info("notification worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
