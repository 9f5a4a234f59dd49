package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/logger"
	"alcyxob/gym-manager/internal/service"
)

// Services are the dependencies of the HTTP layer.
type Services struct {
	Auth          service.AuthService
	Clients       service.ClientService
	Trainers      service.TrainerService
	Payments      service.PaymentService
	Notifications service.NotificationService
	Dashboard     service.DashboardService
	Analytics     service.AnalyticsService
	// Health reports whether the backing store is reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter builds the engine with the global middleware and every route.
func NewRouter(cfg config.ServerConfig, svc Services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(), CORSMiddleware(cfg.AllowedOrigins))
	router.MaxMultipartMemory = 8 << 20

	if cfg.StaticDir != "" && cfg.StaticPrefix != "" {
		router.Static(cfg.StaticPrefix, cfg.StaticDir)
	}

	SetupRoutes(router, svc)
	return router
}

func SetupRoutes(router *gin.Engine, svc Services) {
	useJSONFieldNames()

	authHandler := NewAuthHandler(svc.Auth)
	clientHandler := NewClientHandler(svc.Clients)
	trainerHandler := NewTrainerHandler(svc.Trainers)
	paymentHandler := NewPaymentHandler(svc.Payments)
	notificationHandler := NewNotificationHandler(svc.Notifications)
	dashboardHandler := NewDashboardHandler(svc.Dashboard, svc.Analytics)

	authMiddleware := AuthMiddleware(svc.Auth)
	managers := RoleMiddleware(domain.RoleAdmin, domain.RoleManager)
	admins := RoleMiddleware(domain.RoleAdmin)

	router.GET("/health", healthHandler(svc.Health))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/forgot-password", authHandler.ForgotPassword)
			authGroup.POST("/verify-otp", authHandler.VerifyOTP)
			authGroup.POST("/reset-password", authHandler.ResetPassword)
		}
	}

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		account := protected.Group("/auth")
		{
			account.GET("/me", authHandler.Me)
			account.POST("/logout", authHandler.Logout)
			account.PUT("/update-password", authHandler.UpdatePassword)
			account.PUT("/profile", authHandler.UpdateProfile)
			account.POST("/avatar", authHandler.UploadAvatar)
		}

		// --- Client Routes ---
		clients := protected.Group("/clients")
		{
			clients.GET("", clientHandler.ListClients)
			clients.POST("", clientHandler.CreateClient)
			clients.GET("/stats", clientHandler.ClientStats)
			clients.GET("/:id", clientHandler.GetClient)
			clients.PUT("/:id", clientHandler.UpdateClient)
			clients.DELETE("/:id", managers, clientHandler.DeleteClient)
			clients.GET("/:id/attendance", clientHandler.ListAttendance)
			clients.POST("/:id/attendance", clientHandler.RecordAttendance)
			clients.GET("/:id/progress", clientHandler.ListProgress)
			clients.POST("/:id/progress", clientHandler.AddProgress)
			clients.POST("/:id/avatar", clientHandler.UploadAvatar)
		}

		// --- Trainer Routes ---
		trainers := protected.Group("/trainers")
		{
			trainers.GET("", trainerHandler.ListTrainers)
			trainers.POST("", trainerHandler.CreateTrainer)
			trainers.GET("/:id", trainerHandler.GetTrainer)
			trainers.PUT("/:id", trainerHandler.UpdateTrainer)
			trainers.DELETE("/:id", managers, trainerHandler.DeleteTrainer)
			trainers.GET("/:id/clients", trainerHandler.GetTrainerClients)
			trainers.GET("/:id/schedule", trainerHandler.GetSchedule)
			trainers.POST("/:id/schedule", trainerHandler.AddScheduleEntry)
			trainers.DELETE("/:id/schedule/:entryId", trainerHandler.RemoveScheduleEntry)
			trainers.POST("/:id/salary", admins, trainerHandler.AddSalaryRecord)
			trainers.PATCH("/:id/status", trainerHandler.UpdateStatus)
			trainers.POST("/:id/avatar", trainerHandler.UploadAvatar)
		}

		// --- Payment Routes ---
		payments := protected.Group("/payments")
		{
			payments.GET("", paymentHandler.ListPayments)
			payments.POST("", paymentHandler.CreatePayment)
			payments.GET("/stats", paymentHandler.PaymentStats)
			payments.GET("/export", paymentHandler.ExportPayments)
			payments.GET("/:id", paymentHandler.GetPayment)
			payments.PUT("/:id", paymentHandler.UpdatePayment)
			payments.POST("/:id/refund", managers, paymentHandler.RefundPayment)
			payments.GET("/:id/receipt", paymentHandler.GetReceipt)
			payments.POST("/:id/receipt", paymentHandler.EmailReceipt)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardHandler.Stats)
			dashboard.GET("/activities", dashboardHandler.RecentActivities)
			dashboard.GET("/revenue-chart", dashboardHandler.RevenueChart)
			dashboard.GET("/membership-chart", dashboardHandler.MembershipChart)
			dashboard.GET("/expiring", dashboardHandler.UpcomingExpirations)
		}

		analytics := protected.Group("/analytics")
		{
			analytics.GET("/overview", dashboardHandler.Overview)
			analytics.GET("/revenue", dashboardHandler.Revenue)
			analytics.GET("/memberships", dashboardHandler.Memberships)
			analytics.GET("/trainers", dashboardHandler.Trainers)
			analytics.GET("/client-growth", dashboardHandler.ClientGrowth)
			analytics.GET("/payment-methods", dashboardHandler.PaymentMethods)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Route not found")
	})
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.FromContext(ctx).Error("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok", "time": time.Now().UTC()})
	}
}
