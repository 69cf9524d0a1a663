package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adrianstroescu/saasrevive/internal/db"
	"github.com/adrianstroescu/saasrevive/internal/models"
)

// IOfferService defines the interface for offer operations.
type IOfferService interface {
	CreateOffer(ctx context.Context, listingID, buyerID string, amount int64, message string) (*models.Offer, error)
	FindByID(ctx context.Context, offerID string) (*models.Offer, error)
	DecideOffer(ctx context.Context, offerID, sellerID string, action models.OfferAction) (models.OfferStatus, error)
	FindRecentForSeller(ctx context.Context, sellerID string, limit int) ([]models.Offer, error)
	FindByBuyer(ctx context.Context, buyerID string) ([]models.Offer, error)
}

const offersCollection = "offers"

// offerService implements IOfferService.
type offerService struct {
	db *mongo.Database
}

// NewOfferService creates a new OfferService.
func NewOfferService(db *mongo.Database) IOfferService {
	return &offerService{db: db}
}

// CreateOffer creates a new PENDING offer against a listing.
func (s *offerService) CreateOffer(ctx context.Context, listingID, buyerID string, amount int64, message string) (*models.Offer, error) {
	collection := s.db.Collection(offersCollection)
	now := time.Now().UTC()

	var newOffer *models.Offer
	operation := func() error {
		newOffer = &models.Offer{
			ID:        uuid.NewString(),
			ListingID: listingID,
			BuyerID:   buyerID,
			Amount:    amount,
			Message:   message,
			Status:    models.OfferStatusPending,
			CreatedAt: now,
		}
		_, insertErr := collection.InsertOne(ctx, newOffer)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert offer for listing %s: %w", listingID, err)
	}
	return newOffer, nil
}

// FindByID finds an offer by its ID.
func (s *offerService) FindByID(ctx context.Context, offerID string) (*models.Offer, error) {
	var offer models.Offer
	err := s.db.Collection(offersCollection).FindOne(ctx, bson.M{"_id": offerID}).Decode(&offer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding offer %s: %w", offerID, err)
	}
	return &offer, nil
}

// DecideOffer moves a PENDING offer to its terminal status on behalf of the
// owning seller. Returns mongo.ErrNoDocuments if the offer does not exist,
// ErrNotListingOwner if sellerID does not own the offer's listing, and
// ErrOfferNotPending if the offer was already decided.
//
// The final write is conditional on status still being PENDING, so of two
// concurrent decisions exactly one wins; the loser observes ErrOfferNotPending.
func (s *offerService) DecideOffer(ctx context.Context, offerID, sellerID string, action models.OfferAction) (models.OfferStatus, error) {
	offer, err := s.FindByID(ctx, offerID)
	if err != nil {
		return "", err
	}

	var listing models.Listing
	err = s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"_id": offer.ListingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Listing vanished underneath the offer; treat as not found.
			return "", mongo.ErrNoDocuments
		}
		return "", fmt.Errorf("error finding listing %s for offer %s: %w", offer.ListingID, offerID, err)
	}
	if listing.SellerID != sellerID {
		return "", ErrNotListingOwner
	}
	if offer.Status != models.OfferStatusPending {
		return "", ErrOfferNotPending
	}
	if !action.IsValid() {
		return "", ErrInvalidOfferAction
	}

	newStatus := action.Status()
	now := time.Now().UTC()
	filter := bson.M{"_id": offerID, "status": models.OfferStatusPending}
	update := bson.M{"$set": bson.M{"status": newStatus, "decided_at": now}}

	result, err := s.db.Collection(offersCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return "", fmt.Errorf("db error deciding offer %s: %w", offerID, err)
	}
	if result.MatchedCount == 0 {
		// Lost a race with a concurrent decision.
		return "", ErrOfferNotPending
	}

	return newStatus, nil
}

// FindRecentForSeller returns the most recent offers across all of the
// seller's listings.
func (s *offerService) FindRecentForSeller(ctx context.Context, sellerID string, limit int) ([]models.Offer, error) {
	listingIDs, err := listingIDsOwnedBy(ctx, s.db, sellerID)
	if err != nil {
		return nil, err
	}
	if len(listingIDs) == 0 {
		return []models.Offer{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.db.Collection(offersCollection).Find(ctx, bson.M{"listing_id": bson.M{"$in": listingIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find offers for seller %s: %w", sellerID, err)
	}
	defer cur.Close(ctx)

	var offers []models.Offer
	if err = cur.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode offers for seller %s: %w", sellerID, err)
	}
	return offers, nil
}

// FindByBuyer returns all offers submitted by a buyer, newest first.
func (s *offerService) FindByBuyer(ctx context.Context, buyerID string) ([]models.Offer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.db.Collection(offersCollection).Find(ctx, bson.M{"buyer_id": buyerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find offers for buyer %s: %w", buyerID, err)
	}
	defer cur.Close(ctx)

	var offers []models.Offer
	if err = cur.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode offers for buyer %s: %w", buyerID, err)
	}
	return offers, nil
}
