package models

import (
	"time"
)

// Inquiry is a buyer's free-text message about a listing. Created once, immutable.
type Inquiry struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	ListingID string    `bson:"listing_id" json:"listing_id"`
	BuyerID   string    `bson:"buyer_id" json:"buyer_id"`
	Message   string    `bson:"message" json:"message"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
