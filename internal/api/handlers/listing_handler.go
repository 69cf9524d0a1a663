package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adrianstroescu/saasrevive/internal/api/middleware"
	"github.com/adrianstroescu/saasrevive/internal/config"
	"github.com/adrianstroescu/saasrevive/internal/insights"
	"github.com/adrianstroescu/saasrevive/internal/models"
	"github.com/adrianstroescu/saasrevive/internal/services"
	"github.com/adrianstroescu/saasrevive/internal/storage"
)

// ListingHandler handles listing creation, browsing, and screenshot uploads.
type ListingHandler struct {
	cfg            *config.Config
	listingService services.IListingService
	userService    services.IUserService
	storageService storage.IS3Storage
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(cfg *config.Config, listingService services.IListingService, userService services.IUserService, storageService storage.IS3Storage) *ListingHandler {
	return &ListingHandler{
		cfg:            cfg,
		listingService: listingService,
		userService:    userService,
		storageService: storageService,
	}
}

type createListingRequest struct {
	Title          string `json:"title" binding:"required,min=3,max=200"`
	Description    string `json:"description" binding:"required,min=20,max=10000"`
	TechStack      string `json:"techStack" binding:"omitempty,max=200"`
	MonthlyRevenue *int64 `json:"monthlyRevenue" binding:"omitempty,min=0,max=1000000000"`
	MonthlyCosts   *int64 `json:"monthlyCosts" binding:"omitempty,min=0,max=1000000000"`
	AskingPrice    *int64 `json:"askingPrice" binding:"omitempty,min=1,max=1000000000"`
}

// listingCard is the browse-page projection of a listing.
type listingCard struct {
	models.Listing
	SellerName string           `json:"sellerName"`
	Insights   insights.Summary `json:"insights"`
}

// listingDetail is the detail-page projection of a listing. Screenshot keys
// are resolved to short-lived download URLs.
type listingDetail struct {
	models.Listing
	SellerName     string          `json:"sellerName"`
	ScreenshotURLs []string        `json:"screenshotUrls"`
	Insights       insights.Detail `json:"insights"`
}

// CreateListing handles POST /listings. Anonymous callers, and authenticated
// callers who are not sellers, fall back to the shared guest seller account.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx := c.Request.Context()

	sellerID := ""
	if middleware.CurrentRole(c) == models.RoleSeller {
		sellerID = middleware.CurrentUserID(c)
	}
	if sellerID == "" {
		guest, err := h.userService.GetOrCreateGuestSeller(ctx)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
			return
		}
		sellerID = guest.ID
	}

	listing, err := h.listingService.CreateListing(ctx, sellerID, services.CreateListingInput{
		Title:          req.Title,
		Description:    req.Description,
		TechStack:      req.TechStack,
		MonthlyRevenue: req.MonthlyRevenue,
		MonthlyCosts:   req.MonthlyCosts,
		AskingPrice:    req.AskingPrice,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "listingId": listing.ID})
}

// ListListings handles GET /listings with cursor pagination.
func (h *ListingHandler) ListListings(c *gin.Context) {
	limit := h.cfg.ListingPageSize
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var cursorPtr *string
	if cursor := c.Query("cursor"); cursor != "" {
		cursorPtr = &cursor
	}

	ctx := c.Request.Context()
	listings, nextCursor, err := h.listingService.ListActive(ctx, limit, cursorPtr)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list listings"})
		return
	}

	sellerNames := make(map[string]string)
	cards := make([]listingCard, 0, len(listings))
	for i := range listings {
		l := listings[i]
		name, seen := sellerNames[l.SellerID]
		if !seen {
			if seller, err := h.userService.FindByID(ctx, l.SellerID); err == nil {
				name = seller.Name
			}
			sellerNames[l.SellerID] = name
		}
		cards = append(cards, listingCard{
			Listing:    l,
			SellerName: name,
			Insights:   insights.Summarize(&l),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"data":        cards,
		"next_cursor": nextCursor,
	})
}

// GetListing handles GET /listings/:id.
func (h *ListingHandler) GetListing(c *gin.Context) {
	ctx := c.Request.Context()

	listing, err := h.listingService.FindActiveByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}

	sellerName := ""
	if seller, err := h.userService.FindByID(ctx, listing.SellerID); err == nil {
		sellerName = seller.Name
	}

	screenshotURLs := make([]string, 0, len(listing.Screenshots))
	for _, key := range listing.Screenshots {
		url, err := h.storageService.GeneratePresignedGetURL(ctx, key)
		if err != nil {
			_ = c.Error(err)
			continue
		}
		screenshotURLs = append(screenshotURLs, url)
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"data": listingDetail{
			Listing:        *listing,
			SellerName:     sellerName,
			ScreenshotURLs: screenshotURLs,
			Insights:       insights.Detailed(listing),
		},
	})
}

type screenshotURLRequest struct {
	Filename    string `json:"filename" binding:"required,min=1,max=255"`
	ContentType string `json:"contentType" binding:"required,oneof=image/png image/jpeg image/webp"`
}

// CreateScreenshotURL handles POST /listings/:id/screenshot-url. The owning
// seller receives a presigned S3 PUT URL; the object key is recorded on the
// listing.
func (h *ListingHandler) CreateScreenshotURL(c *gin.Context) {
	var req screenshotURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx := c.Request.Context()
	listingID := c.Param("id")
	userID := middleware.CurrentUserID(c)

	listing, err := h.listingService.FindActiveByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}
	if listing.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	uploadURL, key, err := h.storageService.GeneratePresignedPutURL(ctx, userID, listingID, req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	if err := h.listingService.AddScreenshot(ctx, listingID, userID, key); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record screenshot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "uploadUrl": uploadURL, "key": key})
}
