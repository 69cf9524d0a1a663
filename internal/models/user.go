package models

import (
	"time"
)

// Role determines which side of the marketplace a user acts on.
type Role string

const (
	RoleSeller Role = "SELLER"
	RoleBuyer  Role = "BUYER"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleSeller || r == RoleBuyer
}

// User represents an account in the system.
// The guest seller is a single well-known User row (Guest=true) that owns
// listings created without authentication; it has no password and cannot sign in.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password" json:"-"` // Store hash, not plaintext
	Role         Role      `bson:"role" json:"role"`
	Guest        bool      `bson:"guest" json:"guest"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
