package main

import (
	"context"
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/lvtodo/lvtodo-api/internal/config"
	"github.com/lvtodo/lvtodo-api/internal/constants"
	"github.com/lvtodo/lvtodo-api/internal/database"
	"github.com/lvtodo/lvtodo-api/internal/handlers"
	"github.com/lvtodo/lvtodo-api/internal/middleware"
	"github.com/lvtodo/lvtodo-api/internal/notifications"
	"github.com/lvtodo/lvtodo-api/internal/repository"
	"github.com/lvtodo/lvtodo-api/internal/scheduler"
	"github.com/lvtodo/lvtodo-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Repositories
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	wishRepo := repository.NewWishRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	// Services
	notifier := notifications.NewLogNotifier()
	statsService := services.NewStatsService(userRepo, historyRepo, wishRepo)
	achievementService := services.NewAchievementService(userRepo, statsService)
	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, groupRepo, userRepo, notifier, achievementService)
	wishService := services.NewWishService(wishRepo, groupRepo, userRepo, notifier, achievementService)
	groupService := services.NewGroupService(groupRepo, userRepo)
	historyService := services.NewHistoryService(historyRepo)

	// Background deadline sweeps
	sched := scheduler.New(taskRepo, notifier, cfg.ReminderInterval, cfg.OverdueInterval)
	sched.Start(context.Background())

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, historyService)
	groupHandler := handlers.NewGroupHandler(groupService)
	wishHandler := handlers.NewWishHandler(wishService)
	userHandler := handlers.NewUserHandler(statsService, achievementService, historyService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "LvTodo API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.PATCH("/me", middleware.RequireAuth(), authHandler.UpdateProfile)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth())
		{
			users.GET("/me/stats", userHandler.GetStats)
			users.GET("/me/achievements", userHandler.ListAchievements)
			users.GET("/me/history", userHandler.GetHistory)
		}

		// Group routes (protected)
		groups := api.Group("/groups")
		groups.Use(middleware.RequireAuth())
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("", groupHandler.ListGroups)
			groups.POST("/join", groupHandler.JoinGroup)
			groups.GET("/:id", middleware.RequireGroupMember(), groupHandler.GetGroup)
			groups.PATCH("/:id", middleware.RequireGroupMember(), middleware.RequireGroupOwner(), groupHandler.UpdateGroup)
			groups.DELETE("/:id", middleware.RequireGroupMember(), middleware.RequireGroupOwner(), groupHandler.DeleteGroup)
			groups.POST("/:id/leave", middleware.RequireGroupMember(), groupHandler.LeaveGroup)
			groups.POST("/:id/regenerate-code", middleware.RequireGroupMember(), middleware.RequireGroupOwner(), groupHandler.RegenerateInviteCode)
			groups.GET("/:id/members", middleware.RequireGroupMember(), groupHandler.ListGroupMembers)

			// Wish routes, scoped to a group
			groups.GET("/:id/wishes", middleware.RequireGroupMember(), wishHandler.ListWishes)
			groups.POST("/:id/wishes", middleware.RequireGroupMember(), wishHandler.ProposeWish)
			groups.GET("/:id/wishes/:wish_id", middleware.RequireGroupMember(), wishHandler.GetWish)
			groups.POST("/:id/wishes/:wish_id/approve", middleware.RequireGroupMember(), wishHandler.ApproveWish)
			groups.POST("/:id/wishes/:wish_id/complete", middleware.RequireGroupMember(), wishHandler.CompleteWish)
			groups.POST("/:id/wishes/:wish_id/cancel", middleware.RequireGroupMember(), wishHandler.CancelWish)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.POST("/:id/start", middleware.RequireTaskAccess(), taskHandler.StartTask)
			tasks.POST("/:id/complete", middleware.RequireTaskAccess(), taskHandler.CompleteTask)
			tasks.POST("/:id/confirm", middleware.RequireTaskAccess(), taskHandler.ConfirmTask)
			tasks.POST("/:id/dispute", middleware.RequireTaskAccess(), taskHandler.DisputeTask)
			tasks.GET("/:id/history", middleware.RequireTaskAccess(), taskHandler.GetTaskHistory)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
