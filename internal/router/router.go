package router

import (
	"github.com/blues/cfp/internal/auth"
	"github.com/blues/cfp/internal/config"
	"github.com/blues/cfp/internal/handler"
	"github.com/blues/cfp/internal/logic"
	"github.com/blues/cfp/internal/middleware"
	"github.com/blues/cfp/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "crowdfunding-platform",
		})
	})

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLHours)

	// 业务逻辑
	userLogic := logic.NewUserLogic(db, issuer)
	draftLogic := logic.NewDraftLogic(db)
	publishLogic := logic.NewPublishLogic(db)
	campaignLogic := logic.NewCampaignLogic(db)
	trackingLogic := logic.NewTrackingLogic(db)
	paymentLogic := logic.NewPaymentLogic(db)
	adminLogic := logic.NewAdminLogic(db)
	notificationLogic := logic.NewNotificationLogic(db)

	authMW := middleware.NewAuth(issuer, userLogic)

	// 处理器
	authHandler := handler.NewAuthHandler(userLogic)
	draftHandler := handler.NewDraftHandler(draftLogic, publishLogic)
	campaignHandler := handler.NewCampaignHandler(campaignLogic, trackingLogic)
	adminHandler := handler.NewAdminHandler(adminLogic)
	paymentHandler := handler.NewPaymentHandler(paymentLogic)
	notificationHandler := handler.NewNotificationHandler(notificationLogic)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authMW.RequireAuth(), authHandler.Me)
			authGroup.PUT("/me", authMW.RequireAuth(), authHandler.UpdateProfile)
		}

		// 草稿相关路由，仅发起人
		drafts := v1.Group("/drafts")
		drafts.Use(authMW.RequireAuth(), authMW.RequireRole(model.UserRoleFounder))
		{
			drafts.POST("", draftHandler.CreateDraft)
			drafts.GET("", draftHandler.GetDrafts)
			drafts.GET("/:id", draftHandler.GetDraft)
			drafts.PUT("/:id", draftHandler.UpdateDraft)
			drafts.DELETE("/:id", draftHandler.DeleteDraft)
			drafts.POST("/:id/publish", draftHandler.PublishDraft)
		}

		// 活动相关路由
		campaigns := v1.Group("/campaigns")
		{
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/most-viewed", campaignHandler.GetMostViewed)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.POST("/:id/view", authMW.OptionalAuth(), campaignHandler.TrackView)

			campaigns.POST("", authMW.RequireAuth(), authMW.RequireRole(model.UserRoleFounder), campaignHandler.CreateCampaign)
			campaigns.PUT("/:id", authMW.RequireAuth(), authMW.RequireRole(model.UserRoleFounder), campaignHandler.UpdateCampaign)
			campaigns.DELETE("/:id", authMW.RequireAuth(), authMW.RequireRole(model.UserRoleFounder), campaignHandler.DeleteCampaign)

			campaigns.POST("/:id/favorite", authMW.RequireAuth(), campaignHandler.ToggleFavorite)
			campaigns.GET("/user/my-campaigns", authMW.RequireAuth(), campaignHandler.GetMyCampaigns)
			campaigns.GET("/user/favorites", authMW.RequireAuth(), campaignHandler.GetFavorites)
			campaigns.GET("/user/recently-viewed", authMW.RequireAuth(), campaignHandler.GetRecentlyViewed)
		}

		// 管理员路由
		admin := v1.Group("/admin")
		admin.Use(authMW.RequireAuth(), authMW.RequireRole(model.UserRoleAdmin))
		{
			admin.GET("/founders", adminHandler.GetFounders)
			admin.POST("/founders/:id/approve", adminHandler.ApproveFounder)
			admin.POST("/founders/:id/reject", adminHandler.RejectFounder)
			admin.GET("/campaigns", adminHandler.GetCampaigns)
			admin.POST("/campaigns/:id/approve", adminHandler.ApproveCampaign)
			admin.POST("/campaigns/:id/reject", adminHandler.RejectCampaign)
		}

		// 支付相关路由
		payments := v1.Group("/payments")
		payments.Use(authMW.RequireAuth())
		{
			payments.POST("/initialize", paymentHandler.InitializePayment)
			payments.GET("/verify/:reference", paymentHandler.VerifyPayment)
			payments.POST("/allocate", paymentHandler.AllocateToMilestone)
			payments.GET("/history", paymentHandler.GetHistory)
			payments.GET("/details/:id", paymentHandler.GetDetails)
			payments.GET("/campaign/:campaignId", paymentHandler.GetCampaignPayments)
			payments.GET("/stats/campaign/:campaignId", paymentHandler.GetCampaignStats)
		}

		// 通知相关路由
		notifications := v1.Group("/notifications")
		notifications.Use(authMW.RequireAuth())
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Session-Id")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
