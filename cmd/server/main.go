package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"srmdb/config"
	"srmdb/internal/handler"
	"srmdb/internal/model"
	"srmdb/internal/repository"
	"srmdb/internal/service"
	dbPkg "srmdb/pkg/db"
	"srmdb/pkg/jwt"
	"srmdb/pkg/logger"
	redisPkg "srmdb/pkg/redis"
	"srmdb/pkg/response"
	"srmdb/pkg/tmdb"
	"srmdb/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== SRMDB服务启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	if _, err := dbPkg.InitDB(cfg.Database); err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(
		&model.User{},
		&model.LibraryEntry{},
		&model.Review{},
		&model.SharedLibrary{},
		&model.SharedEntry{},
		&model.CompatibilityEntry{},
		&model.Archive{},
		&model.Notification{},
	); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 初始化Redis（失败时降级运行：未读计数回源数据库，目录请求不走缓存）
	if err := redisPkg.InitRedis(cfg.Redis); err != nil {
		log.Warn("Redis连接失败，以降级模式运行", zap.Error(err))
	} else {
		defer redisPkg.Close()
		log.Info("Redis连接成功")
	}

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	stores := repository.NewStores(dbPkg.GetDB())
	hub := websocket.GetManager()
	tmdbClient := tmdb.NewClient(cfg.TMDB)

	userSvc := service.NewUserService(stores, jwtSvc, hub)
	partnerSvc := service.NewPartnerService(stores, hub)
	librarySvc := service.NewLibraryService(stores, hub)
	reviewSvc := service.NewReviewService(stores, librarySvc, hub)
	notificationSvc := service.NewNotificationService(stores)
	catalogSvc := service.NewCatalogService(tmdbClient, cfg.TMDB.CacheTTL)
	recommendSvc := service.NewRecommendService(stores, tmdbClient)

	userHandler := handler.NewUserHandler(userSvc, jwtSvc, cfg.Server.CookieSecure)
	partnerHandler := handler.NewPartnerHandler(partnerSvc, userSvc)
	libraryHandler := handler.NewLibraryHandler(librarySvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc, recommendSvc)

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()

	// 注入jwt_config/ws_config到Gin context，供WebSocket握手使用
	router.Use(func(c *gin.Context) {
		c.Set("jwt_config", cfg.JWT)
		c.Set("ws_config", cfg.WebSocket)
		c.Next()
	})

	// 使用中间件
	router.Use(logger.LoggerMiddleware())      // 自定义日志中间件
	router.Use(logger.ErrorLoggerMiddleware()) // 错误日志中间件
	router.Use(gin.Recovery())

	// 6. 基础路由
	setupBasicRoutes(router)

	// 6.1 业务路由
	api := router.Group("/api")
	auth := jwtSvc.AuthMiddleware()
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", userHandler.Register)
			authGroup.POST("/login", userHandler.Login)

			protected := authGroup.Group("")
			protected.Use(auth)
			{
				protected.GET("/me", userHandler.Me)
				protected.POST("/refresh", userHandler.Refresh)
				protected.POST("/logout", userHandler.Logout)
			}
		}

		user := api.Group("/user")
		user.Use(auth)
		{
			user.PUT("/update", userHandler.Update)
			user.DELETE("/partner", partnerHandler.Remove)
		}

		users := api.Group("/users")
		users.Use(auth)
		{
			users.GET("/search", userHandler.Search)
			users.GET("/profile/:username", userHandler.Profile)
		}

		library := api.Group("/library")
		library.Use(auth)
		{
			library.GET("", libraryHandler.Get)
			library.GET("/partner", libraryHandler.GetPartner)
			library.GET("/shared", libraryHandler.GetShared)
			library.POST("/:category", libraryHandler.Add)
			library.DELETE("/:category/:id", libraryHandler.Remove)
		}

		watched := api.Group("/watched")
		watched.Use(auth)
		{
			watched.POST("/:type/:id", libraryHandler.MarkWatched)
		}

		reviews := api.Group("/reviews")
		reviews.Use(auth)
		{
			reviews.POST("/:type/:id", reviewHandler.Save)
			reviews.GET("/:type/:id", reviewHandler.Get)
		}

		partner := api.Group("/partner")
		partner.Use(auth)
		{
			partner.POST("/request", partnerHandler.Request)
			partner.POST("/accept", partnerHandler.Accept)
			partner.POST("/reject", partnerHandler.Reject)
		}

		notifications := api.Group("/notifications")
		notifications.Use(auth)
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/system", notificationHandler.System)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		movies := api.Group("/movies")
		movies.Use(auth)
		{
			movies.GET("/popular", catalogHandler.Popular)
			movies.GET("/popular/:type", catalogHandler.PopularByType)
		}

		ai := api.Group("/ai")
		ai.Use(auth)
		{
			ai.POST("/recommendations", catalogHandler.Recommendations)
		}
	}

	// WebSocket路由
	router.GET("/ws", websocket.WsHandler)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := dbPkg.HealthCheck(); err != nil {
			status = "db-down"
		}
		redisStatus := "ok"
		if err := redisPkg.HealthCheck(); err != nil {
			redisStatus = "down"
		}
		response.Success(c, gin.H{
			"status": status,
			"redis":  redisStatus,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 根路径
	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "SRMDB API",
			"version": "1.0.0",
		})
	})
}
