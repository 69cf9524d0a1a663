package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adrianstroescu/saasrevive/internal/api/handlers"
	"github.com/adrianstroescu/saasrevive/internal/api/middleware"
	"github.com/adrianstroescu/saasrevive/internal/config"
	"github.com/adrianstroescu/saasrevive/internal/models"
	"github.com/adrianstroescu/saasrevive/internal/services"
	"github.com/adrianstroescu/saasrevive/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.IAsynqClient) *gin.Engine {
	userService := services.NewUserService(db, cfg)
	listingService := services.NewListingService(db, cfg, rdb)
	inquiryService := services.NewInquiryService(db)
	offerService := services.NewOfferService(db)
	supportService := services.NewSupportService(db)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	authHandler := handlers.NewAuthHandler(cfg, userService)
	listingHandler := handlers.NewListingHandler(cfg, listingService, userService, s3StorageService)
	dealHandler := handlers.NewDealHandler(cfg, listingService, inquiryService, offerService, userService, taskClient)
	supportHandler := handlers.NewSupportHandler(cfg, supportService, taskClient)
	dashboardHandler := handlers.NewDashboardHandler(listingService, inquiryService, offerService)

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.POST("/auth/signup", authHandler.Signup)
	r.POST("/auth/signin", authHandler.Signin)

	// Public browse routes.
	r.GET("/listings", listingHandler.ListListings)
	r.GET("/listings/:id", listingHandler.GetListing)

	// Listing creation allows anonymous callers via the guest seller fallback.
	optionalAuth := r.Group("/")
	optionalAuth.Use(middleware.OptionalAuthMiddleware(cfg.JwtSecret))
	{
		optionalAuth.POST("/listings", listingHandler.CreateListing)
		optionalAuth.POST("/support", supportHandler.CreateTicket)
	}

	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
	{
		authRequired.POST("/listings/:id/inquiries", dealHandler.CreateInquiry)
		authRequired.POST("/listings/:id/offers", dealHandler.CreateOffer)
		authRequired.PATCH("/offers/:id", dealHandler.DecideOffer)
		authRequired.POST("/verification", supportHandler.CreateVerification)
		authRequired.GET("/dashboard", dashboardHandler.GetDashboard)
	}

	// Screenshot uploads are a seller-only surface; listing ownership is
	// checked in the handler.
	sellerOnly := authRequired.Group("/")
	sellerOnly.Use(middleware.RequireRole(models.RoleSeller))
	{
		sellerOnly.POST("/listings/:id/screenshot-url", listingHandler.CreateScreenshotURL)
	}

	return r
}
