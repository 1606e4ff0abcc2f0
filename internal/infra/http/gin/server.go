package gin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"spacehub/internal/infra/obs"
)

type ServerDeps struct {
	Booking *BookingHandler
	Me      *MeHandler

	ReadinessChecks map[string]obs.ReadinessCheck
	Log             *slog.Logger
	Production      bool
}

// NewServer wires the HTTP surface: REST routes under /api/v1 plus health
// endpoints.
func NewServer(addr string, deps ServerDeps) *http.Server {
	if deps.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obs.RequestID())
	router.Use(obs.RequestLogger(deps.Log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-ID", "Idempotency-Key", obs.RequestIDHeader},
		ExposeHeaders:    []string{obs.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(Authentication())

	obs.RegisterHealth(router, deps.ReadinessChecks)

	api := router.Group("/api/v1")
	{
		api.POST("/bookings", deps.Booking.Request)
		api.GET("/bookings/:id/cancellation-quote", deps.Booking.CancellationQuote)
		api.POST("/bookings/:id/cancel", deps.Booking.Cancel)
		api.GET("/bookings/series/:group_id/cancellation-quote", deps.Booking.GroupCancellationQuote)
		api.POST("/bookings/series/:group_id/cancel", deps.Booking.CancelGroup)

		api.GET("/me/bookings", deps.Me.Bookings)
		api.GET("/me/notifications", deps.Me.ListNotifications)
	}

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
