package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/tailor-shop-api/config"
	"github.com/kendall-kelly/tailor-shop-api/controllers"
	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/middleware"
	"github.com/kendall-kelly/tailor-shop-api/models"
	"github.com/kendall-kelly/tailor-shop-api/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("tailor-shop-api: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLog, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer appLog.Sync()
	logger.SetDefault(appLog)
	appLog.Info("Starting Tailor Shop API server...", "env", cfg.GoEnv)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		return err
	}
	db := config.GetDB()
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	appLog.Info("Database migration completed successfully")

	images, err := newImageService(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	services.SetImageService(images)

	sessions, closeSessions, err := newSessionStore(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer closeSessions()
	services.SetSessionStore(sessions)

	auth, err := middleware.NewAuthenticator(cfg, sessions, services.NewAuthService(db, appLog), appLog)
	if err != nil {
		return fmt.Errorf("set up authentication: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, auth, middleware.NewMetrics(), appLog),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("Server is running", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	appLog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newImageService(ctx context.Context, cfg *config.Config, appLog *logger.Logger) (services.ImageService, error) {
	if cfg.StorageBackend == "s3" {
		s3Service, err := services.NewS3Service(ctx, cfg, appLog)
		if err != nil {
			return nil, err
		}
		appLog.Info("Storing images in S3", "bucket", cfg.AWSS3Bucket)
		return services.NewS3ImageService(s3Service), nil
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	appLog.Info("Storing images on disk", "dir", cfg.UploadDir)
	return services.NewLocalImageService(cfg.UploadDir), nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, appLog *logger.Logger) (services.SessionStore, func(), error) {
	if cfg.SessionStore == "redis" {
		store, err := services.NewRedisSessionStore(ctx, cfg.RedisAddr, cfg.SessionTTL, appLog)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return services.NewDBSessionStore(config.GetDB(), cfg.SessionTTL), func() {}, nil
}

// setupRouter wires every route. Everything under /api except the login
// flow and status endpoints requires an authenticated owner.
func setupRouter(cfg *config.Config, auth *middleware.Authenticator, metrics *middleware.Metrics, appLog *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(appLog), metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/uploads/:filename", controllers.GetUploadedImage)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheck)
		api.GET("/database/status", databaseStatus)

		api.POST("/login", controllers.Login)
		api.GET("/check-session", controllers.CheckSession)
		api.POST("/logout", controllers.Logout)
		api.POST("/get-saved-credentials", controllers.GetSavedCredentials)
	}

	protected := api.Group("", auth.RequireOwner())
	{
		protected.GET("/dashboard", controllers.Dashboard)

		protected.POST("/customers", controllers.AddCustomer)
		protected.GET("/customers", controllers.GetCustomers)
		protected.GET("/customers/search", controllers.SearchCustomers)
		protected.PUT("/customers/:id", controllers.UpdateCustomer)
		protected.DELETE("/customers/:id", controllers.DeleteCustomer)

		protected.POST("/karigars", controllers.AddKarigar)
		protected.GET("/karigars", controllers.GetKarigars)
		protected.GET("/karigars/search", controllers.SearchKarigars)
		protected.PUT("/karigars/:id", controllers.UpdateKarigar)
		protected.DELETE("/karigars/:id", controllers.DeleteKarigar)

		protected.POST("/orders", controllers.CreateOrder)
		protected.GET("/orders", controllers.GetOrders)
		protected.GET("/orders/search", controllers.SearchOrders)
		protected.GET("/orders/suborders", controllers.GetSubOrders)
		protected.PUT("/orders/:id", controllers.UpdateOrder)
		protected.DELETE("/orders/:id", controllers.DeleteOrder)

		protected.POST("/settings", controllers.SaveSettings)
		protected.GET("/settings", controllers.GetSettings)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tailor Shop API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
