package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bullet-journal/backend/internal/cache"
	"bullet-journal/backend/internal/config"
	"bullet-journal/backend/internal/handlers"
	"bullet-journal/backend/internal/middleware"
	"bullet-journal/backend/internal/migration"
	"bullet-journal/backend/internal/monitoring"
	"bullet-journal/backend/internal/repositories"
	"bullet-journal/backend/internal/services"
	"bullet-journal/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := repositories.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := repositories.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisCache := cache.NewRedisCache(&cache.Config{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer redisCache.Close()

	router := setupRouter(cfg, db, redisCache)

	w := worker.New(worker.Config{RedisClient: redisCache.Client()})
	w.RegisterHandler(worker.JobTypeLineageCleanup,
		worker.NewLineageCleanupHandler(db, cfg.Worker.CleanupRetention))
	w.Start(cfg.Worker.Concurrency)
	defer w.Stop()

	queue := worker.NewJobQueue(redisCache.Client())
	cleanupDone := make(chan struct{})
	go scheduleCleanup(queue, cfg.Worker.CleanupInterval, cleanupDone)
	defer close(cleanupDone)

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.GetServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

// scheduleCleanup enqueues a lineage-cleanup job on a fixed interval. The
// worker pool does the actual pruning.
func scheduleCleanup(queue *worker.JobQueue, interval time.Duration, done <-chan struct{}) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := queue.Enqueue(worker.QueueDefault, worker.JobTypeLineageCleanup, nil); err != nil {
				log.Printf("Failed to enqueue cleanup job: %v", err)
			}
		}
	}
}

func setupRouter(cfg *config.Config, db *gorm.DB, redisCache *cache.RedisCache) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORS.Origin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: cfg.CORS.Origin != "*",
		MaxAge:           12 * time.Hour,
	}))

	metrics := monitoring.NewMetrics()
	router.Use(metrics.Middleware())

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstSize,
			cfg.RateLimit.CleanupInterval,
		)
		router.Use(limiter.Middleware())
	}

	policy := migration.NewPolicy(cfg.Migration.Limit)
	taskService := services.NewTaskService()
	rescheduleService := services.NewRescheduleService(policy)
	cachedTasks := services.NewCachedTaskService(taskService, rescheduleService, redisCache)
	projectService := services.NewProjectService()
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	registerService := services.NewRegisterService(cfg.Auth.BCryptCost)

	taskHandler := handlers.NewTaskHandler(db, cachedTasks, cachedTasks)
	projectHandler := handlers.NewProjectHandler(db, projectService)
	authHandler := handlers.NewAuthHandler(db, authService, registerService)
	healthHandler := handlers.NewHealthHandler(db, redisCache)

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.AuthMiddleware(cfg.Auth.JWTSecret), authHandler.GetMe)

	tasks := api.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	tasks.GET("", taskHandler.GetTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("/:id", taskHandler.GetTaskByID)
	tasks.PATCH("/:id", taskHandler.UpdateTask)
	tasks.POST("/:id/reschedule", taskHandler.RescheduleTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	projects := api.Group("/projects")
	projects.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	projects.GET("", projectHandler.GetProjects)
	projects.POST("", projectHandler.CreateProject)
	projects.PATCH("/:id", projectHandler.UpdateProject)
	projects.DELETE("/:id", projectHandler.DeleteProject)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return router
}
