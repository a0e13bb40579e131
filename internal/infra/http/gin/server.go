package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayhub/internal/infra/config"
	"stayhub/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Booking        BookingHTTP
	Listing        ListingHTTP
	HostBooking    HostBookingHTTP
	HostListing    HostListingHTTP
	Onboarding     OnboardingHTTP
	Me             MeHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/listings/:id/quote", h.Booking.Quote)
		api.GET("/listings/:id/availability", h.Booking.Availability)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Get)
	}
	if h.HostBooking != nil {
		hostBookings := api.Group("/host/bookings")
		hostBookings.GET("", h.HostBooking.List)
		hostBookings.POST("/:id/confirm", h.HostBooking.Confirm)
		hostBookings.POST("/:id/decline", h.HostBooking.Decline)
	}
	if h.HostListing != nil {
		hostListings := api.Group("/host/listings")
		hostListings.GET("", h.HostListing.List)
		hostListings.PUT("/:id", h.HostListing.Update)
	}
	if h.Onboarding != nil {
		wizard := api.Group("/host/onboarding")
		wizard.GET("", h.Onboarding.Resume)
		wizard.PUT("/property", h.Onboarding.SubmitProperty)
		wizard.PUT("/location", h.Onboarding.SubmitLocation)
		wizard.PUT("/pricing", h.Onboarding.SubmitPricing)
		wizard.PUT("/photos", h.Onboarding.SubmitPhotos)
		wizard.POST("/photos/upload", h.Onboarding.UploadPhoto)
		wizard.POST("/back", h.Onboarding.Back)
		wizard.POST("/complete", h.Onboarding.Complete)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.Bookings)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.GET("/overview", h.Admin.Overview)
		adminGroup.GET("/users", h.Admin.Users)
		adminGroup.POST("/users/:id/block", h.Admin.BlockUser)
		adminGroup.POST("/listings/:id/suspend", h.Admin.SuspendListing)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
