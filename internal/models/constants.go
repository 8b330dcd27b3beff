package models

import "time"

const (
	// StatusPending is rendered by the web client but never produced by the booking flow.
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	ListingActive   = "active"
	ListingInactive = "inactive"
	ListingDeleted  = "deleted"
)

const (
	// DeletePolicyReject refuses to delete a listing that still has upcoming reservations.
	DeletePolicyReject = "reject"
	// DeletePolicyCascadeCancel cancels upcoming reservations together with the listing.
	DeletePolicyCascadeCancel = "cascade_cancel"
)

const (
	// DefaultTokenTTL is the validity of issued bearer credentials.
	DefaultTokenTTL = 24 * time.Hour

	// DefaultMaxNights caps a single stay.
	DefaultMaxNights = 90

	// DefaultMaxAdvanceDays is how far ahead a check-in may be placed.
	DefaultMaxAdvanceDays = 365

	// DefaultLoginAttempts per DefaultLoginWindow per email.
	DefaultLoginAttempts = 10
	DefaultLoginWindow   = 15 * time.Minute
)

// PlaceholderImages is the gallery assigned to listings created without images.
var PlaceholderImages = []string{
	"https://images.pexels.com/photos/1396122/pexels-photo-1396122.jpeg",
	"https://images.pexels.com/photos/1457842/pexels-photo-1457842.jpeg",
	"https://images.pexels.com/photos/1428348/pexels-photo-1428348.jpeg",
}
