package handler

import (
	"context"
	"net/http"
	"time"

	"dashboard/internal/middleware"
	"dashboard/internal/service"
	"dashboard/internal/websocket"
	"dashboard/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig carries everything the HTTP surface is built from.
type RouterConfig struct {
	Log         logrus.FieldLogger
	CORSOrigins []string
	Tokens      middleware.TokenParser
	Hub         *websocket.Hub // optional
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	// Health reports dependency failures; nil means always healthy.
	Health func(ctx context.Context) error

	Users         service.UserService
	Purchases     service.PurchaseService
	Notifications service.NotificationService
	Documents     service.DocumentService
	Achievements  service.AchievementService
	Audit         service.AuditService
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(cfg.Log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:5173"}
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "unhealthy"))
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	if cfg.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(cfg.Hub, c, cfg.Tokens)
		})
	}

	requireAuth := middleware.RequireAuth(cfg.Tokens)
	root := router.Group("")
	NewUserHandler(cfg.Users, requireAuth, cfg.AccessTTL, cfg.RefreshTTL).RegisterRoutes(root)
	NewPurchaseHandler(cfg.Purchases, requireAuth).RegisterRoutes(root)
	NewNotificationHandler(cfg.Notifications, requireAuth).RegisterRoutes(root)
	NewDocumentHandler(cfg.Documents, requireAuth).RegisterRoutes(root)
	NewAchievementHandler(cfg.Achievements, requireAuth).RegisterRoutes(root)
	NewAuditHandler(cfg.Audit, requireAuth).RegisterRoutes(root)

	return router
}
