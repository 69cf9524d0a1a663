package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adrianstroescu/saasrevive/internal/api/middleware"
	"github.com/adrianstroescu/saasrevive/internal/config"
	"github.com/adrianstroescu/saasrevive/internal/models"
	"github.com/adrianstroescu/saasrevive/internal/services"
)

// SupportHandler handles support ticket and verification request intake.
type SupportHandler struct {
	cfg            *config.Config
	supportService services.ISupportService
	taskClient     IAsynqClient
}

// NewSupportHandler creates a new SupportHandler.
func NewSupportHandler(cfg *config.Config, supportService services.ISupportService, taskClient IAsynqClient) *SupportHandler {
	return &SupportHandler{cfg: cfg, supportService: supportService, taskClient: taskClient}
}

type createTicketRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,min=3,max=200"`
	Message string `json:"message" binding:"required,min=10,max=10000"`
}

type createVerificationRequest struct {
	Type    string `json:"type" binding:"required,oneof=SELLER BUYER"`
	Details string `json:"details" binding:"required,min=10,max=10000"`
}

// CreateTicket handles POST /support. Anonymous submissions are allowed; the
// caller's identity is attached when present.
func (h *SupportHandler) CreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx := c.Request.Context()
	ticket, err := h.supportService.CreateTicket(ctx, middleware.CurrentUserID(c), req.Email, req.Subject, req.Message)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create support ticket"})
		return
	}

	enqueueEmail(ctx, h.taskClient, req.Email,
		"Support request received",
		"We received your support request and will get back to you shortly.\r\n\r\nSubject: "+req.Subject+"\r\n")

	c.JSON(http.StatusOK, gin.H{"ok": true, "ticketId": ticket.ID})
}

// CreateVerification handles POST /verification. Requires authentication.
func (h *SupportHandler) CreateVerification(c *gin.Context) {
	var req createVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	request, err := h.supportService.CreateVerificationRequest(
		c.Request.Context(), middleware.CurrentUserID(c), models.Role(req.Type), req.Details, "")
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "requestId": request.ID})
}
