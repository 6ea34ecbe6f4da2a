package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"irma-verse/config"
	"irma-verse/internal/handler"
	"irma-verse/internal/model"
	"irma-verse/internal/repository"
	"irma-verse/internal/service"
	dbPkg "irma-verse/pkg/db"
	"irma-verse/pkg/jwt"
	"irma-verse/pkg/logger"
	"irma-verse/pkg/metrics"
	"irma-verse/pkg/middleware"
	"irma-verse/pkg/redis"
	"irma-verse/pkg/sanitize"
	"irma-verse/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("配置无效", zap.Error(err))
	}

	log.Info("=== IRMA Verse 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Int("database_replicas", len(cfg.Database.Replicas)),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	gdb, err := dbPkg.InitDB(cfg.Database, cfg.Log.Level)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(&model.User{}, &model.Friendship{}); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 Redis（可选）：会话吊销与在线状态
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redis.InitRedis(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Fatal("Redis连接失败", zap.Error(err))
		}
		defer redis.Close()
		jwtSvc.WithRevocation(redis.NewSessionStore())
		log.Info("Redis连接成功", zap.String("addr", cfg.Redis.RedisAddr()))
	}

	// 3.3 初始化业务服务
	wsManager := websocket.NewManager()
	userRepo := repository.NewUserRepository(gdb)
	friendshipRepo := repository.NewFriendshipRepository(gdb)

	userSvc := service.NewUserService(userRepo, jwtSvc)
	friendshipSvc := service.NewFriendshipService(userRepo, friendshipRepo, wsManager)
	directorySvc := service.NewDirectoryService(userRepo)
	chatSvc := service.NewChatService(userRepo, wsManager)

	if err := sanitize.RegisterValidators(); err != nil {
		log.Fatal("注册校验规则失败", zap.Error(err))
	}

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.RequestLogger())
	router.Use(logger.ErrorLoggerMiddleware())
	router.Use(metrics.PrometheusMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	router.GET("/metrics", metrics.Handler())

	rt := &handler.Router{
		JWT:       jwtSvc,
		Users:     handler.NewUserHandler(userSvc, jwtSvc, wsManager),
		Friends:   handler.NewFriendHandler(friendshipSvc),
		Members:   handler.NewMemberHandler(directorySvc),
		Chat:      handler.NewChatHandler(chatSvc),
		WebSocket: websocket.NewHandler(wsManager, jwtSvc, cfg.WebSocket).Serve,
	}
	rt.Register(router)

	// 6. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 7. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 7.1 定期清理Redis在线集合中已过期的用户
	stopCleanup := make(chan struct{})
	if redis.Enabled() {
		go func() {
			ticker := time.NewTicker(redis.PresenceTTL)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := redis.CleanExpiredPresence(ctx); err != nil {
						log.Warn("清理在线状态失败", zap.Error(err))
					}
					cancel()
				case <-stopCleanup:
					return
				}
			}
		}()
	}

	// 8. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")
	close(stopCleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}
