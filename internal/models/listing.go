package models

import (
	"strings"
	"time"
)

type Listing struct {
	ID            string    `json:"id" yaml:"id"`
	Slug          string    `json:"slug" yaml:"slug"`
	Title         string    `json:"title" yaml:"title"`
	Location      string    `json:"location" yaml:"location"`
	PricePerNight int64     `json:"price" yaml:"price"`
	MaxGuests     int       `json:"maxGuests" yaml:"max_guests"`
	PropertyType  string    `json:"type" yaml:"type"`
	Description   string    `json:"description" yaml:"description"`
	Images        []string  `json:"images" yaml:"images"`
	Amenities     []string  `json:"amenities" yaml:"amenities"`
	Bedrooms      int       `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms     int       `json:"bathrooms" yaml:"bathrooms"`
	HostID        string    `json:"hostId" yaml:"host_id"`
	HostName      string    `json:"hostName" yaml:"host_name"`
	Status        string    `json:"status" yaml:"status"`
	CreatedAt     time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt     time.Time `json:"updatedAt" yaml:"-"`
}

func (l *Listing) IsActive() bool {
	return l.Status == ListingActive
}

// PrimaryImage is the first gallery image or an empty string.
func (l *Listing) PrimaryImage() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// ListingFilter narrows ListActive. Zero values mean "no constraint".
type ListingFilter struct {
	Location     string
	PropertyType string
	Guests       int
	MinPrice     int64
	MaxPrice     int64
	// Stay, when set, excludes listings with an overlapping non-cancelled reservation.
	Stay *DateRange
}

// Matches applies the non-availability parts of the filter.
func (f ListingFilter) Matches(l *Listing) bool {
	if f.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.PropertyType != "" && !strings.EqualFold(l.PropertyType, f.PropertyType) {
		return false
	}
	if f.Guests > 0 && l.MaxGuests < f.Guests {
		return false
	}
	if f.MinPrice > 0 && l.PricePerNight < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && l.PricePerNight > f.MaxPrice {
		return false
	}
	return true
}

// ListingUpdate carries the optional fields of a partial listing edit.
type ListingUpdate struct {
	Title         *string
	Location      *string
	PricePerNight *int64
	MaxGuests     *int
	PropertyType  *string
	Description   *string
	Amenities     []string
	Bedrooms      *int
	Bathrooms     *int
}

// ChangesTerms reports whether the update touches price or capacity.
func (u ListingUpdate) ChangesTerms(l *Listing) bool {
	if u.PricePerNight != nil && *u.PricePerNight != l.PricePerNight {
		return true
	}
	return u.MaxGuests != nil && *u.MaxGuests != l.MaxGuests
}

// Apply copies the set fields onto l.
func (u ListingUpdate) Apply(l *Listing) {
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.Location != nil {
		l.Location = *u.Location
	}
	if u.PricePerNight != nil {
		l.PricePerNight = *u.PricePerNight
	}
	if u.MaxGuests != nil {
		l.MaxGuests = *u.MaxGuests
	}
	if u.PropertyType != nil {
		l.PropertyType = *u.PropertyType
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
	if u.Amenities != nil {
		l.Amenities = u.Amenities
	}
	if u.Bedrooms != nil {
		l.Bedrooms = *u.Bedrooms
	}
	if u.Bathrooms != nil {
		l.Bathrooms = *u.Bathrooms
	}
}
