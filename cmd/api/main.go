package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/handlers"
	"github.com/recipebox/recipebox/internal/middleware"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/services"
	"github.com/recipebox/recipebox/pkg/cache"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/queue"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	logLevel := "debug"
	if cfg.Server.Mode == "release" {
		logLevel = "info"
	}
	logger := logger.NewLogger(logLevel)
	logger.Info("Starting Recipebox API server...")

	// 初始化数据库
	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// 自动迁移数据库表
	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	// 初始化Redis缓存
	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	// 初始化Kafka生产者
	recipeEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.RecipeEvents)
	defer recipeEventsProducer.Close()

	relationEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.RelationEvents)
	defer relationEventsProducer.Close()

	// 初始化仓库
	userRepo := repository.NewUserRepository(db.DB)
	subscriptionRepo := repository.NewSubscriptionRepository(db.DB)
	tagRepo := repository.NewTagRepository(db.DB)
	ingredientRepo := repository.NewIngredientRepository(db.DB)
	recipeRepo := repository.NewRecipeRepository(db.DB)
	favoriteRepo := repository.NewFavoriteRepository(db.DB)
	basketRepo := repository.NewBasketRepository(db.DB)

	// 初始化服务
	userService := services.NewUserService(userRepo, logger)
	shortLinkService := services.NewShortLinkService(recipeRepo, cfg.App.BaseURL, logger)
	recipeService := services.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, favoriteRepo, basketRepo, shortLinkService, recipeEventsProducer, cfg.App.ShortLinkRetries, logger)
	favoriteService := services.NewFavoriteService(favoriteRepo, recipeRepo, relationEventsProducer, logger)
	basketService := services.NewBasketService(basketRepo, recipeRepo, relationEventsProducer, logger)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, userRepo, recipeRepo, relationEventsProducer, logger)
	shoppingListService := services.NewShoppingListService(basketRepo, redisClient, cfg.App.ShoppingListCacheTTL, logger)
	tagService := services.NewTagService(tagRepo)
	ingredientService := services.NewIngredientService(ingredientRepo)

	// 初始化处理器
	userHandler := handlers.NewUserHandler(userService, subscriptionService, cfg.JWT.Secret, int64(cfg.JWT.ExpireTime.Seconds()))
	recipeHandler := handlers.NewRecipeHandler(recipeService, favoriteService, basketService, shoppingListService, shortLinkService)
	tagHandler := handlers.NewTagHandler(tagService)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())

	// 添加CORS中间件
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	jwtConfig := &middleware.JWTConfig{Secret: cfg.JWT.Secret}

	// 短链跳转
	router.GET("/s/:token", recipeHandler.RedirectShortLink)

	// API路由
	api := router.Group("/api/v1")
	{
		// 注册登录
		auth := api.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}

		// 公开只读路由，带token时用于标记收藏和购物篮状态
		public := api.Group("")
		public.Use(middleware.NewOptionalJWTAuth(jwtConfig))
		{
			public.GET("/users", userHandler.ListUsers)
			public.GET("/users/:id", userHandler.GetProfile)
			public.GET("/tags", tagHandler.ListTags)
			public.GET("/tags/:id", tagHandler.GetTag)
			public.GET("/ingredients", ingredientHandler.ListIngredients)
			public.GET("/ingredients/:id", ingredientHandler.GetIngredient)
			public.GET("/recipes", recipeHandler.ListRecipes)
			public.GET("/recipes/:id", recipeHandler.GetRecipe)
			public.GET("/recipes/:id/short-link", recipeHandler.GetShortLink)
		}

		// 需要认证的路由
		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(jwtConfig))
		{
			protected.GET("/me", userHandler.GetMe)
			protected.PUT("/me", userHandler.UpdateProfile)

			protected.GET("/subscriptions", userHandler.GetSubscriptions)
			protected.GET("/feed", recipeHandler.ListSubscriptionRecipes)
			protected.POST("/users/:id/subscribe", userHandler.Subscribe)
			protected.DELETE("/users/:id/subscribe", userHandler.Unsubscribe)

			protected.POST("/recipes", recipeHandler.CreateRecipe)
			protected.PUT("/recipes/:id", recipeHandler.UpdateRecipe)
			protected.DELETE("/recipes/:id", recipeHandler.DeleteRecipe)

			protected.POST("/recipes/:id/favorite", recipeHandler.AddFavorite)
			protected.DELETE("/recipes/:id/favorite", recipeHandler.RemoveFavorite)
			protected.POST("/recipes/:id/shopping_cart", recipeHandler.AddToBasket)
			protected.DELETE("/recipes/:id/shopping_cart", recipeHandler.RemoveFromBasket)
			protected.GET("/shopping_cart/download", recipeHandler.DownloadShoppingCart)
		}
	}

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	// 创建必要的目录
	dirs := []string{"configs", "data"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Failed to create directory %s: %v", dir, err)
		}
	}

	// 创建默认配置文件（如果不存在）
	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "recipebox"
  password: "recipebox"
  dbname: "recipebox"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    recipe_events: "recipe-events"
    relation_events: "relation-events"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

app:
  base_url: "http://localhost:8080"
  shopping_list_cache_ttl: 10m
  short_link_retries: 5`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
