package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adrianstroescu/saasrevive/internal/api/middleware"
	"github.com/adrianstroescu/saasrevive/internal/models"
	"github.com/adrianstroescu/saasrevive/internal/services"
)

const dashboardRecentLimit = 10

// DashboardHandler serves the role-gated dashboard view.
type DashboardHandler struct {
	listingService services.IListingService
	inquiryService services.IInquiryService
	offerService   services.IOfferService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(listingService services.IListingService, inquiryService services.IInquiryService, offerService services.IOfferService) *DashboardHandler {
	return &DashboardHandler{
		listingService: listingService,
		inquiryService: inquiryService,
		offerService:   offerService,
	}
}

// sellerListing is a listing plus its deal counts on the seller dashboard.
type sellerListing struct {
	models.Listing
	Deals services.DealCounts `json:"deals"`
}

// GetDashboard handles GET /dashboard. Sellers see their listings with deal
// counts plus recent inbound activity; buyers see their own inquiries and
// offers.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)

	if middleware.CurrentRole(c) == models.RoleSeller {
		listings, err := h.listingService.FindBySellerID(ctx, userID)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		sellerListings := make([]sellerListing, 0, len(listings))
		for i := range listings {
			counts, err := h.listingService.CountDeals(ctx, listings[i].ID)
			if err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
				return
			}
			sellerListings = append(sellerListings, sellerListing{Listing: listings[i], Deals: counts})
		}

		inquiries, err := h.inquiryService.FindRecentForSeller(ctx, userID, dashboardRecentLimit)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
		offers, err := h.offerService.FindRecentForSeller(ctx, userID, dashboardRecentLimit)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok":        true,
			"role":      models.RoleSeller,
			"listings":  sellerListings,
			"inquiries": inquiries,
			"offers":    offers,
		})
		return
	}

	inquiries, err := h.inquiryService.FindByBuyer(ctx, userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}
	offers, err := h.offerService.FindByBuyer(ctx, userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"role":      models.RoleBuyer,
		"inquiries": inquiries,
		"offers":    offers,
	})
}
