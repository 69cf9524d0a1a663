package models

import (
	"time"
)

// ListingStatus is the lifecycle status of a listing. ACTIVE is the only status
// this codebase ever sets or filters on; other values are intentionally not
// modeled until a real lifecycle exists.
type ListingStatus string

const (
	ListingStatusActive ListingStatus = "ACTIVE"
)

// Listing represents a for-sale SaaS business. Listings are created once and
// never mutated afterwards, except for appending screenshot keys.
type Listing struct {
	ID          string        `bson:"_id,omitempty" json:"id,omitempty"`
	SellerID    string        `bson:"seller_id" json:"seller_id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	TechStack   string        `bson:"tech_stack,omitempty" json:"tech_stack,omitempty"`
	// Monetary fields are whole dollars; absent means "not disclosed".
	MonthlyRevenue *int64        `bson:"monthly_revenue,omitempty" json:"monthly_revenue,omitempty"`
	MonthlyCosts   *int64        `bson:"monthly_costs,omitempty" json:"monthly_costs,omitempty"`
	AskingPrice    *int64        `bson:"asking_price,omitempty" json:"asking_price,omitempty"`
	Status         ListingStatus `bson:"status" json:"status"`
	Screenshots    []string      `bson:"screenshots" json:"screenshots"` // S3 keys
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
}
