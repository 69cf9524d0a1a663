package models

import (
	"time"
)

// SupportTicket is a free-text support request. Anonymous submissions are
// allowed, in which case UserID is empty.
type SupportTicket struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Email     string    `bson:"email" json:"email"`
	Subject   string    `bson:"subject" json:"subject"`
	Message   string    `bson:"message" json:"message"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// VerificationRequest is a user's request to be verified as a seller or buyer.
// Stored for manual review; there is no further workflow.
type VerificationRequest struct {
	ID          string    `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Type        Role      `bson:"type" json:"type"`
	Details     string    `bson:"details" json:"details"`
	EvidenceKey string    `bson:"evidence_key,omitempty" json:"evidence_key,omitempty"` // S3 key
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
