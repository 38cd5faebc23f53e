package routes

import (
	"net/http"
	"time"

	"estately/handlers"
	"estately/middleware"
	"estately/models"
	"estately/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers the dependency health endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}

// RegisterPropertyRoutes registers the availability lookup used by the request form.
func RegisterPropertyRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/properties")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/:propertyId/booked-slots", hb.GetBookedSlots)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		bookingGroup.POST("", hb.CreateBooking)
		bookingGroup.GET("", hb.QueryBookings)
		bookingGroup.GET("/:id", hb.GetBooking)
		bookingGroup.PATCH("/:id/status", hb.UpdateStatus)
		bookingGroup.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), hb.DeleteBooking)
	}
}

// RegisterNotificationRoutes sets up the notification feed endpoints.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("", hb.ListNotifications)
		api.PATCH("/:id/read", hb.MarkNotification)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowOrigins []string) {
	r.Use(cors.New(corsConfig(allowOrigins)))

	RegisterHealthRoute(r)
	RegisterPropertyRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
}

func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range allowOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(allowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = allowOrigins
	return cfg
}
