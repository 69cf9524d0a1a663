package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adrianstroescu/saasrevive/internal/db"
	"github.com/adrianstroescu/saasrevive/internal/models"
)

// IInquiryService defines the interface for inquiry operations.
type IInquiryService interface {
	CreateInquiry(ctx context.Context, listingID, buyerID, message string) (*models.Inquiry, error)
	FindRecentForSeller(ctx context.Context, sellerID string, limit int) ([]models.Inquiry, error)
	FindByBuyer(ctx context.Context, buyerID string) ([]models.Inquiry, error)
}

const inquiriesCollection = "inquiries"

// inquiryService implements IInquiryService.
type inquiryService struct {
	db *mongo.Database
}

// NewInquiryService creates a new InquiryService.
func NewInquiryService(db *mongo.Database) IInquiryService {
	return &inquiryService{db: db}
}

// CreateInquiry creates a new inquiry document. Listing visibility and
// self-dealing checks happen in the handler against the listing service,
// mirroring the route semantics.
func (s *inquiryService) CreateInquiry(ctx context.Context, listingID, buyerID, message string) (*models.Inquiry, error) {
	collection := s.db.Collection(inquiriesCollection)
	now := time.Now().UTC()

	var newInquiry *models.Inquiry
	operation := func() error {
		newInquiry = &models.Inquiry{
			ID:        uuid.NewString(),
			ListingID: listingID,
			BuyerID:   buyerID,
			Message:   message,
			CreatedAt: now,
		}
		_, insertErr := collection.InsertOne(ctx, newInquiry)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert inquiry for listing %s: %w", listingID, err)
	}
	return newInquiry, nil
}

// FindRecentForSeller returns the most recent inquiries across all of the
// seller's listings.
func (s *inquiryService) FindRecentForSeller(ctx context.Context, sellerID string, limit int) ([]models.Inquiry, error) {
	listingIDs, err := listingIDsOwnedBy(ctx, s.db, sellerID)
	if err != nil {
		return nil, err
	}
	if len(listingIDs) == 0 {
		return []models.Inquiry{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.db.Collection(inquiriesCollection).Find(ctx, bson.M{"listing_id": bson.M{"$in": listingIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find inquiries for seller %s: %w", sellerID, err)
	}
	defer cur.Close(ctx)

	var inquiries []models.Inquiry
	if err = cur.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to decode inquiries for seller %s: %w", sellerID, err)
	}
	return inquiries, nil
}

// FindByBuyer returns all inquiries submitted by a buyer, newest first.
func (s *inquiryService) FindByBuyer(ctx context.Context, buyerID string) ([]models.Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.db.Collection(inquiriesCollection).Find(ctx, bson.M{"buyer_id": buyerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find inquiries for buyer %s: %w", buyerID, err)
	}
	defer cur.Close(ctx)

	var inquiries []models.Inquiry
	if err = cur.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to decode inquiries for buyer %s: %w", buyerID, err)
	}
	return inquiries, nil
}

// listingIDsOwnedBy resolves the ids of every listing owned by sellerID.
// Shared by the inquiry and offer dashboard reads.
func listingIDsOwnedBy(ctx context.Context, database *mongo.Database, sellerID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := database.Collection(listingsCollection).Find(ctx, bson.M{"seller_id": sellerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listings for seller %s: %w", sellerID, err)
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err = cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listing ids for seller %s: %w", sellerID, err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
