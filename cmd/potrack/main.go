package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/potrack/internal/config"
	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/handler"
	"github.com/bitfantasy/potrack/internal/middleware"
	"github.com/bitfantasy/potrack/internal/repository"
	"github.com/bitfantasy/potrack/internal/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting potrack service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Organization{},
		&entity.User{},
		&entity.ProcurementRequest{},
		&entity.RequestItem{},
		&entity.VendorOption{},
		&entity.VendorOptionItem{},
		&entity.PurchaseOrder{},
		&entity.POItem{},
		&entity.PaymentUpdate{},
		&entity.DeliveryUpdate{},
		&entity.AuditLog{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// 初始化Redis（看板缓存，连不上也不影响主流程）
	rdb := initRedis(cfg.Redis)

	// 依赖装配
	repos := repository.NewRepositories(db, zapLogger)
	authSvc := service.NewAuthService(repos, cfg.JWT)
	requestSvc := service.NewRequestService(repos, db)
	poSvc := service.NewPOService(repos, db)
	dashboardSvc := service.NewDashboardService(repos, rdb)
	userSvc := service.NewUserService(repos, db)
	handlers := handler.NewHandlers(authSvc, requestSvc, poSvc, dashboardSvc, userSvc)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", h.Auth.Login)

		auth := v1.Group("")
		auth.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 采购申请
			requests := auth.Group("/procurement-requests")
			{
				requests.GET("", h.Request.ListRequests)
				requests.GET("/:id", h.Request.GetRequest)
				requests.POST("", middleware.RequireRole(entity.RoleHeadOfDepartment), h.Request.CreateRequest)
				requests.PATCH("/:id/admin-review", middleware.RequireRole(entity.RoleAdmin), h.Request.AdminReview)
				requests.POST("/:id/vendor-options", middleware.RequireRole(entity.RoleLogistics), h.Request.SubmitVendorOptions)
				requests.POST("/:id/select-vendor", middleware.RequireRole(entity.RoleAdmin), h.Request.SelectVendor)
			}

			// 采购订单
			pos := auth.Group("/purchase-orders")
			{
				pos.GET("", h.PO.ListPOs)
				pos.GET("/export", middleware.RequireRole(entity.RoleAdmin, entity.RoleHeadOfDepartment), h.PO.ExportPOs)
				pos.GET("/:id", h.PO.GetPO)
				pos.POST("", middleware.RequireRole(entity.RoleLogistics), h.PO.CreatePO)
				pos.PATCH("/:id/review", middleware.RequireRole(entity.RoleHeadOfDepartment), h.PO.ReviewPO)
				pos.PATCH("/:id/payment", middleware.RequireRole(entity.RoleFinance), h.PO.UpdatePayment)
				pos.PATCH("/:id/delivery", middleware.RequireRole(entity.RoleStores), h.PO.UpdateDelivery)
				pos.GET("/:id/payment-history", h.PO.GetPaymentHistory)
				pos.GET("/:id/delivery-history", h.PO.GetDeliveryHistory)
			}

			// 看板
			auth.GET("/dashboard/stats", h.Dashboard.GetStats)

			// 用户管理
			users := auth.Group("/users", middleware.RequireRole(entity.RoleAdmin))
			{
				users.GET("", h.User.ListUsers)
				users.PATCH("/:id/role", h.User.ChangeRole)
				users.PATCH("/:id/status", h.User.SetActive)
				users.PATCH("/:id/password", h.User.ResetPassword)
			}
		}
	}
}
