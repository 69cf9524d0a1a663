package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adrianstroescu/saasrevive/internal/api/middleware"
	"github.com/adrianstroescu/saasrevive/internal/config"
	"github.com/adrianstroescu/saasrevive/internal/models"
	"github.com/adrianstroescu/saasrevive/internal/services"
)

// DealHandler handles inquiry submission, offer submission, and offer decisions.
type DealHandler struct {
	cfg            *config.Config
	listingService services.IListingService
	inquiryService services.IInquiryService
	offerService   services.IOfferService
	userService    services.IUserService
	taskClient     IAsynqClient
}

// NewDealHandler creates a new DealHandler.
func NewDealHandler(
	cfg *config.Config,
	listingService services.IListingService,
	inquiryService services.IInquiryService,
	offerService services.IOfferService,
	userService services.IUserService,
	taskClient IAsynqClient,
) *DealHandler {
	return &DealHandler{
		cfg:            cfg,
		listingService: listingService,
		inquiryService: inquiryService,
		offerService:   offerService,
		userService:    userService,
		taskClient:     taskClient,
	}
}

type createInquiryRequest struct {
	Message string `json:"message" binding:"required,min=1,max=4000"`
}

type createOfferRequest struct {
	Amount  *int64 `json:"amount" binding:"required,min=1,max=1000000000"`
	Message string `json:"message" binding:"omitempty,max=4000"`
}

type decideOfferRequest struct {
	Action models.OfferAction `json:"action"`
}

// CreateInquiry handles POST /listings/:id/inquiries.
func (h *DealHandler) CreateInquiry(c *gin.Context) {
	var req createInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx := c.Request.Context()
	buyerID := middleware.CurrentUserID(c)

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

	if listing.SellerID == buyerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You can't inquire on your own listing"})
		return
	}

	inquiry, err := h.inquiryService.CreateInquiry(ctx, listing.ID, buyerID, req.Message)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inquiry"})
		return
	}

	h.notifySeller(c, listing,
		fmt.Sprintf("New inquiry on %q", listing.Title),
		fmt.Sprintf("Your listing %q received a new inquiry:\r\n\r\n%s\r\n", listing.Title, req.Message))

	c.JSON(http.StatusOK, gin.H{"ok": true, "inquiryId": inquiry.ID})
}

// CreateOffer handles POST /listings/:id/offers.
func (h *DealHandler) CreateOffer(c *gin.Context) {
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx := c.Request.Context()
	buyerID := middleware.CurrentUserID(c)

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

	if listing.SellerID == buyerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You can't make an offer on your own listing"})
		return
	}

	offer, err := h.offerService.CreateOffer(ctx, listing.ID, buyerID, *req.Amount, req.Message)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create offer"})
		return
	}

	h.notifySeller(c, listing,
		fmt.Sprintf("New offer on %q", listing.Title),
		fmt.Sprintf("Your listing %q received a new offer of %d.\r\n", listing.Title, offer.Amount))

	c.JSON(http.StatusOK, gin.H{"ok": true, "offerId": offer.ID})
}

// DecideOffer handles PATCH /offers/:id. Role gating runs before the body is
// inspected, and a malformed or unknown action surfaces only once the offer is
// known to exist, be owned by the caller, and still be pending. A bad body
// therefore leaves req.Action empty and falls through to the action check.
func (h *DealHandler) DecideOffer(c *gin.Context) {
	if middleware.CurrentRole(c) != models.RoleSeller {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only sellers can manage offers"})
		return
	}

	var req decideOfferRequest
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	offerID := c.Param("id")
	sellerID := middleware.CurrentUserID(c)

	status, err := h.offerService.DecideOffer(ctx, offerID, sellerID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		case errors.Is(err, services.ErrNotListingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, services.ErrOfferNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending offers can be updated"})
		case errors.Is(err, services.ErrInvalidOfferAction):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update offer"})
		}
		return
	}

	h.notifyBuyer(c, offerID, status)

	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}

// notifySeller queues a notification email to the listing's seller. The guest
// seller has no reachable mailbox and is skipped.
func (h *DealHandler) notifySeller(c *gin.Context, listing *models.Listing, subject, body string) {
	seller, err := h.userService.FindByID(c.Request.Context(), listing.SellerID)
	if err != nil || seller.Guest {
		return
	}
	enqueueEmail(c.Request.Context(), h.taskClient, seller.Email, subject, body)
}

// notifyBuyer queues a decision notification email to the offer's buyer.
func (h *DealHandler) notifyBuyer(c *gin.Context, offerID string, status models.OfferStatus) {
	ctx := c.Request.Context()
	offer, err := h.offerService.FindByID(ctx, offerID)
	if err != nil {
		return
	}
	buyer, err := h.userService.FindByID(ctx, offer.BuyerID)
	if err != nil {
		return
	}
	verb := "accepted"
	if status == models.OfferStatusDeclined {
		verb = "declined"
	}
	enqueueEmail(ctx, h.taskClient, buyer.Email,
		fmt.Sprintf("Your offer was %s", verb),
		fmt.Sprintf("Your offer of %d was %s by the seller.\r\n", offer.Amount, verb))
}
