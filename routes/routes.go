package routes

import (
	"time"

	"brandconnect/config"
	"brandconnect/handlers"
	"brandconnect/middleware"
	"brandconnect/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterBookingRoutes sets up booking and availability endpoints.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/creatives/:id/slots", hb.Booking.AvailableSlotsHandler)

	bookings := api.Group("/bookings")
	{
		bookings.POST("", middleware.RequireRole(models.RoleClient, models.RoleAdmin), hb.Booking.CreateBookingHandler)
		bookings.GET("", hb.Booking.ListBookingsHandler)
		bookings.GET("/:id", hb.Booking.GetBookingHandler)
		bookings.PATCH("/:id/status", hb.Booking.UpdateBookingStatusHandler)
		bookings.POST("/:id/payment", hb.Booking.PayBookingHandler)
		bookings.GET("/:id/calendar.ics", hb.Booking.CalendarHandler)
	}
}

// RegisterPaymentRoutes sets up the intent, confirm and refund endpoints.
func RegisterPaymentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	payments := api.Group("/payments")
	{
		payments.POST("/intents", hb.Payment.CreateIntentHandler)
		payments.POST("/intents/:id/confirm", hb.Payment.ConfirmPaymentHandler)

		admin := payments.Group("")
		admin.Use(middleware.JWTAuthAdminMiddleware())
		admin.POST("/:id/refund", hb.Payment.RefundHandler)
		admin.GET("", hb.Payment.ListPaymentsHandler)
	}
}

// RegisterMessagingRoutes sets up conversation endpoints and the live stream.
func RegisterMessagingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	conversations := api.Group("/conversations")
	{
		conversations.GET("", hb.Messaging.GetConversationsHandler)
		conversations.POST("", hb.Messaging.CreateConversationHandler)
		conversations.GET("/:id/messages", hb.Messaging.GetMessagesHandler)
		conversations.POST("/:id/messages", hb.Messaging.SendMessageHandler)
		conversations.POST("/:id/read", hb.Messaging.MarkReadHandler)
		conversations.GET("/:id/stream", hb.Messaging.StreamHandler)
	}
}

// RegisterNotificationRoutes sets up in-app notification endpoints.
func RegisterNotificationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	notifications := api.Group("/notifications")
	{
		notifications.GET("", hb.Notification.ListNotificationsHandler)
		notifications.POST("/:id/read", hb.Notification.MarkReadHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiter *middleware.RateLimiterStore) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppConfig.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(limiter), middleware.JWTAuthMiddleware())

	RegisterBookingRoutes(api, hb)
	RegisterPaymentRoutes(api, hb)
	RegisterMessagingRoutes(api, hb)
	RegisterNotificationRoutes(api, hb)
}
