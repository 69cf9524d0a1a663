package models

import (
	"time"
)

// OfferStatus is the lifecycle status of an offer. Offers are created PENDING
// and transition exactly once to ACCEPTED or DECLINED.
type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusAccepted OfferStatus = "ACCEPTED"
	OfferStatusDeclined OfferStatus = "DECLINED"
)

// OfferAction is the decision a seller takes on a pending offer.
type OfferAction string

const (
	OfferActionAccept  OfferAction = "ACCEPT"
	OfferActionDecline OfferAction = "DECLINE"
)

// Status returns the terminal status the action resolves to.
func (a OfferAction) Status() OfferStatus {
	if a == OfferActionAccept {
		return OfferStatusAccepted
	}
	return OfferStatusDeclined
}

// IsValid reports whether a is one of the known actions.
func (a OfferAction) IsValid() bool {
	return a == OfferActionAccept || a == OfferActionDecline
}

// Offer is a buyer's monetary proposal against a listing.
type Offer struct {
	ID        string      `bson:"_id,omitempty" json:"id,omitempty"`
	ListingID string      `bson:"listing_id" json:"listing_id"`
	BuyerID   string      `bson:"buyer_id" json:"buyer_id"`
	Amount    int64       `bson:"amount" json:"amount"`
	Message   string      `bson:"message,omitempty" json:"message,omitempty"`
	Status    OfferStatus `bson:"status" json:"status"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
	DecidedAt *time.Time  `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
}
