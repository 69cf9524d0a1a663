package services

import (
	"errors"
)

// Sentinel errors the handlers translate into HTTP statuses. Not-found
// conditions are reported as mongo.ErrNoDocuments, matching the driver.
var (
	// ErrEmailExists is returned when an attempt is made to use an email that already exists.
	ErrEmailExists = errors.New("email already in use by another account")

	// ErrInvalidCredentials is returned when sign-in fails, without revealing
	// whether the account exists.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotListingOwner is returned when a seller tries to decide an offer on a
	// listing they do not own.
	ErrNotListingOwner = errors.New("offer does not belong to one of your listings")

	// ErrOfferNotPending is returned when deciding an offer that has already been
	// accepted or declined.
	ErrOfferNotPending = errors.New("only pending offers can be updated")

	// ErrInvalidOfferAction is returned when an offer decision carries an action
	// other than ACCEPT or DECLINE.
	ErrInvalidOfferAction = errors.New("invalid offer action")
)
