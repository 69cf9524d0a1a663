package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adrianstroescu/saasrevive/internal/config"
	"github.com/adrianstroescu/saasrevive/internal/db"
	"github.com/adrianstroescu/saasrevive/internal/models"
)

// CreateListingInput carries the validated fields for a new listing.
type CreateListingInput struct {
	Title          string
	Description    string
	TechStack      string
	MonthlyRevenue *int64
	MonthlyCosts   *int64
	AskingPrice    *int64
}

// DealCounts holds per-listing inquiry/offer totals for the seller dashboard.
type DealCounts struct {
	Inquiries int64 `json:"inquiries"`
	Offers    int64 `json:"offers"`
}

// IListingService defines the interface for listing-related operations.
type IListingService interface {
	CreateListing(ctx context.Context, sellerID string, in CreateListingInput) (*models.Listing, error)
	FindActiveByID(ctx context.Context, listingID string) (*models.Listing, error)
	ListActive(ctx context.Context, limit int, cursor *string) ([]models.Listing, string, error)
	FindBySellerID(ctx context.Context, sellerID string) ([]models.Listing, error)
	CountDeals(ctx context.Context, listingID string) (DealCounts, error)
	AddScreenshot(ctx context.Context, listingID, sellerID, key string) error
}

const listingsCollection = "listings"

// listingService implements IListingService.
type listingService struct {
	db  *mongo.Database
	cfg *config.Config
	rdb *redis.Client // May be nil; caching is best-effort
}

// NewListingService creates a new ListingService.
func NewListingService(db *mongo.Database, cfg *config.Config, rdb *redis.Client) IListingService {
	return &listingService{db: db, cfg: cfg, rdb: rdb}
}

// CreateListing creates a new ACTIVE listing owned by sellerID.
func (s *listingService) CreateListing(ctx context.Context, sellerID string, in CreateListingInput) (*models.Listing, error) {
	collection := s.db.Collection(listingsCollection)
	now := time.Now().UTC()

	var newListing *models.Listing

	operation := func() error {
		newListing = &models.Listing{
			ID:             uuid.NewString(),
			SellerID:       sellerID,
			Title:          in.Title,
			Description:    in.Description,
			TechStack:      in.TechStack,
			MonthlyRevenue: in.MonthlyRevenue,
			MonthlyCosts:   in.MonthlyCosts,
			AskingPrice:    in.AskingPrice,
			Status:         models.ListingStatusActive,
			Screenshots:    []string{},
			CreatedAt:      now,
		}
		_, insertErr := collection.InsertOne(ctx, newListing)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert new listing for seller %s: %w", sellerID, err)
	}

	return newListing, nil
}

func (s *listingService) cacheKey(listingID string) string {
	return "listing:" + listingID
}

// FindActiveByID finds a listing by ID, restricted to ACTIVE status.
// Returns mongo.ErrNoDocuments when the listing is absent or not ACTIVE.
// Listings are immutable apart from screenshot appends, so a short Redis cache
// in front of the read path is safe.
func (s *listingService) FindActiveByID(ctx context.Context, listingID string) (*models.Listing, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, s.cacheKey(listingID)).Result(); err == nil {
			var listing models.Listing
			if err := json.Unmarshal([]byte(cached), &listing); err == nil {
				return &listing, nil
			}
		}
	}

	var listing models.Listing
	collection := s.db.Collection(listingsCollection)
	filter := bson.M{"_id": listingID, "status": models.ListingStatusActive}

	err := collection.FindOne(ctx, filter).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding listing %s: %w", listingID, err)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(&listing); err == nil {
			if err := s.rdb.Set(ctx, s.cacheKey(listingID), data, s.cfg.ListingCacheTTL).Err(); err != nil {
				log.Printf("WARN: failed to cache listing %s: %v", listingID, err)
			}
		}
	}

	return &listing, nil
}

// ListActive returns ACTIVE listings, newest first, with cursor pagination.
// The cursor is "unixMillis_listingID" of the last item on the previous page.
// Millisecond precision matches what Mongo stores for created_at, so the
// equality branch of the filter lines up exactly with the boundary item.
func (s *listingService) ListActive(ctx context.Context, limit int, cursor *string) ([]models.Listing, string, error) {
	collection := s.db.Collection(listingsCollection)

	filter := bson.M{"status": models.ListingStatusActive}

	if cursor != nil && *cursor != "" {
		parts := strings.SplitN(*cursor, "_", 2)
		if len(parts) == 2 {
			timestampMs, tsErr := strconv.ParseInt(parts[0], 10, 64)
			if tsErr == nil {
				cursorTime := time.UnixMilli(timestampMs).UTC()
				// Items created at the same instant but with smaller ID, or earlier.
				filter["$or"] = bson.A{
					bson.M{"created_at": cursorTime, "_id": bson.M{"$lt": parts[1]}},
					bson.M{"created_at": bson.M{"$lt": cursorTime}},
				}
			} else {
				log.Printf("WARN: Invalid cursor format received: %s", *cursor)
			}
		} else {
			log.Printf("WARN: Invalid cursor format received: %s", *cursor)
		}
	}

	opts := options.Find().
		SetLimit(int64(limit + 1)).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	listCursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list active listings: %w", err)
	}
	defer listCursor.Close(ctx)

	var results []models.Listing
	if err = listCursor.All(ctx, &results); err != nil {
		return nil, "", fmt.Errorf("failed to decode listings: %w", err)
	}

	nextCursor := ""
	if len(results) > limit {
		last := results[limit-1]
		nextCursor = fmt.Sprintf("%d_%s", last.CreatedAt.UnixMilli(), last.ID)
		results = results[:limit]
	}

	return results, nextCursor, nil
}

// FindBySellerID returns all listings owned by a seller, newest first,
// regardless of status.
func (s *listingService) FindBySellerID(ctx context.Context, sellerID string) ([]models.Listing, error) {
	collection := s.db.Collection(listingsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := collection.Find(ctx, bson.M{"seller_id": sellerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find listings for seller %s: %w", sellerID, err)
	}
	defer cur.Close(ctx)

	var listings []models.Listing
	if err = cur.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings for seller %s: %w", sellerID, err)
	}
	return listings, nil
}

// CountDeals counts inquiries and offers received by a listing.
func (s *listingService) CountDeals(ctx context.Context, listingID string) (DealCounts, error) {
	var counts DealCounts
	var err error

	counts.Inquiries, err = s.db.Collection(inquiriesCollection).CountDocuments(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return counts, fmt.Errorf("failed to count inquiries for listing %s: %w", listingID, err)
	}
	counts.Offers, err = s.db.Collection(offersCollection).CountDocuments(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return counts, fmt.Errorf("failed to count offers for listing %s: %w", listingID, err)
	}
	return counts, nil
}

// AddScreenshot appends an uploaded screenshot key to a listing owned by
// sellerID and invalidates the read cache.
func (s *listingService) AddScreenshot(ctx context.Context, listingID, sellerID, key string) error {
	collection := s.db.Collection(listingsCollection)

	filter := bson.M{"_id": listingID, "seller_id": sellerID}
	update := bson.M{"$addToSet": bson.M{"screenshots": key}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("db error adding screenshot %s to listing %s: %w", key, listingID, err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, s.cacheKey(listingID)).Err(); err != nil {
			log.Printf("WARN: failed to invalidate cache for listing %s: %v", listingID, err)
		}
	}
	return nil
}
