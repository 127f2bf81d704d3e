package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/yashyenugu/NeonGram/config"
	"github.com/yashyenugu/NeonGram/internal/api/comment"
	"github.com/yashyenugu/NeonGram/internal/api/post"
	"github.com/yashyenugu/NeonGram/internal/api/user"
	"github.com/yashyenugu/NeonGram/internal/middleware"
	"github.com/yashyenugu/NeonGram/internal/repository/mysql"
	"github.com/yashyenugu/NeonGram/internal/service"
	"github.com/yashyenugu/NeonGram/internal/storage"
	"github.com/yashyenugu/NeonGram/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	err = db.Ping()
	if err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	util.Logger.Info("数据库连接池配置完成")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("username", util.ValidateUsername)
	}

	// 根据配置选择存储后端
	fileStorage := initStorage()

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	tokenRepo := mysql.NewTokenRepository(db)
	postRepo := mysql.NewPostRepository(db)
	commentRepo := mysql.NewCommentRepository(db)

	userService := service.NewUserService(userRepo, tokenRepo)
	postService := service.NewPostService(postRepo, userRepo)
	commentService := service.NewCommentService(commentRepo, postRepo)

	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService, fileStorage)
	postHandler := post.NewPostHandler(postService, fileStorage)
	commentHandler := comment.NewCommentHandler(commentService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}

	r.Use(cors.New(corsConfig))

	// 静态文件的CORS处理
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
		}
		c.Next()
	})

	// 本地存储时由应用直接提供静态文件
	if config.AppConfig.StorageBackend == "local" {
		r.Static("/uploads", config.AppConfig.LocalStoragePath)
	}

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 认证相关路由
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/token", authHandler.Token)
		api.POST("/logout", authHandler.Logout)

		// 需要认证的用户路由
		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			authorized.POST("/verify", authHandler.Verify)
			authorized.GET("/details/:username", profileHandler.GetDetails)
			authorized.PATCH("/updateDetails", profileHandler.UpdateDetails)
			authorized.POST("/addProfilePic", profileHandler.AddProfilePic)
			authorized.DELETE("/deleteProfilePic", profileHandler.DeleteProfilePic)
			authorized.GET("/search", profileHandler.Search)
			authorized.PATCH("/follow/:followingUserId", profileHandler.Follow)
			authorized.PATCH("/unfollow/:followingUserId", profileHandler.Unfollow)
		}

		// 帖子相关路由
		posts := api.Group("/posts")
		posts.Use(middleware.AuthMiddleware())
		{
			posts.POST("/createPost", postHandler.Create)
			posts.GET("", postHandler.Feed)
			posts.GET("/fromFollowing", postHandler.FromFollowing)
			posts.GET("/user/:username", postHandler.UserPosts)
			posts.GET("/:postID", postHandler.Get)
			posts.DELETE("/:postID", postHandler.Delete)

			posts.POST("/:postID/like", postHandler.Like)
			posts.POST("/:postID/dislike", postHandler.Dislike)
			posts.POST("/:postID/removeReaction/:reaction", postHandler.RemoveReaction)
		}

		// 评论相关路由
		comments := api.Group("/comment")
		comments.Use(middleware.AuthMiddleware())
		{
			comments.POST("/add/:postID", commentHandler.Add)
			comments.GET("/:postID", commentHandler.List)
		}

		// 错误统计（调试用）
		if config.AppConfig.Debug {
			api.GET("/debug/errors", func(c *gin.Context) {
				c.JSON(http.StatusOK, errorMonitor.Stats())
			})
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// initStorage 根据 STORAGE_BACKEND 初始化存储实现
func initStorage() storage.Storage {
	switch config.AppConfig.StorageBackend {
	case "s3":
		s3Client, err := storage.NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
		if err != nil {
			util.Logger.Fatal("初始化 S3 存储失败", zap.Error(err))
		}
		util.Logger.Info("使用 S3 存储", zap.String("bucket", config.AppConfig.S3Bucket))
		return s3Client
	case "gcs":
		gcsClient, err := storage.NewGCSClient(config.AppConfig.GCSBucketName, config.AppConfig.GCSCredentialsFile)
		if err != nil {
			util.Logger.Fatal("初始化 GCS 存储失败", zap.Error(err))
		}
		util.Logger.Info("使用 GCS 存储", zap.String("bucket", config.AppConfig.GCSBucketName))
		return gcsClient
	default:
		if err := os.MkdirAll(config.AppConfig.LocalStoragePath, 0755); err != nil {
			util.Logger.Fatal("创建上传文件夹失败", zap.Error(err),
				zap.String("path", config.AppConfig.LocalStoragePath))
		}
		localStorage, err := storage.NewLocalStorage(config.AppConfig.LocalStoragePath)
		if err != nil {
			util.Logger.Fatal("初始化本地存储失败", zap.Error(err))
		}
		util.Logger.Info("使用本地存储", zap.String("path", config.AppConfig.LocalStoragePath))
		return localStorage
	}
}
