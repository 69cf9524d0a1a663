package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adrianstroescu/saasrevive/internal/db"
	"github.com/adrianstroescu/saasrevive/internal/models"
)

// ISupportService defines the interface for support intake operations.
type ISupportService interface {
	CreateTicket(ctx context.Context, userID, email, subject, message string) (*models.SupportTicket, error)
	CreateVerificationRequest(ctx context.Context, userID string, vtype models.Role, details, evidenceKey string) (*models.VerificationRequest, error)
}

const (
	supportTicketsCollection       = "support_tickets"
	verificationRequestsCollection = "verification_requests"
)

// supportService implements ISupportService.
type supportService struct {
	db *mongo.Database
}

// NewSupportService creates a new SupportService.
func NewSupportService(db *mongo.Database) ISupportService {
	return &supportService{db: db}
}

// CreateTicket records a support ticket. userID is empty for anonymous
// submissions.
func (s *supportService) CreateTicket(ctx context.Context, userID, email, subject, message string) (*models.SupportTicket, error) {
	collection := s.db.Collection(supportTicketsCollection)
	now := time.Now().UTC()

	var ticket *models.SupportTicket
	operation := func() error {
		ticket = &models.SupportTicket{
			ID:        uuid.NewString(),
			UserID:    userID,
			Email:     email,
			Subject:   subject,
			Message:   message,
			CreatedAt: now,
		}
		_, insertErr := collection.InsertOne(ctx, ticket)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert support ticket: %w", err)
	}
	return ticket, nil
}

// CreateVerificationRequest records a seller or buyer verification request for
// later manual review.
func (s *supportService) CreateVerificationRequest(ctx context.Context, userID string, vtype models.Role, details, evidenceKey string) (*models.VerificationRequest, error) {
	collection := s.db.Collection(verificationRequestsCollection)
	now := time.Now().UTC()

	var request *models.VerificationRequest
	operation := func() error {
		request = &models.VerificationRequest{
			ID:          uuid.NewString(),
			UserID:      userID,
			Type:        vtype,
			Details:     details,
			EvidenceKey: evidenceKey,
			CreatedAt:   now,
		}
		_, insertErr := collection.InsertOne(ctx, request)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert verification request for user %s: %w", userID, err)
	}
	return request, nil
}
