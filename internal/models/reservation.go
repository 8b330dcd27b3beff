package models

import "time"

type Reservation struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	GuestID    string    `json:"guestId"`
	CheckIn    Date      `json:"checkIn"`
	CheckOut   Date      `json:"checkOut"`
	Guests     int       `json:"guests"`
	TotalPrice int64     `json:"totalPrice"`
	Status     string    `json:"status"` // confirmed, cancelled
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (r *Reservation) Range() DateRange {
	return DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

func (r *Reservation) Nights() int {
	return r.Range().Nights()
}

func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// ReservationDetail is the read-side join of a reservation with listing and guest display fields.
type ReservationDetail struct {
	Reservation
	Nights          int    `json:"nights"`
	ListingTitle    string `json:"propertyTitle"`
	ListingLocation string `json:"propertyLocation"`
	ListingImage    string `json:"propertyImage"`
	HostID          string `json:"hostId"`
	GuestName       string `json:"guestName"`
}

// CanBeAccessedBy reports whether userID is the guest or the listing's host.
func (d *ReservationDetail) CanBeAccessedBy(userID string) bool {
	return userID != "" && (d.GuestID == userID || d.HostID == userID)
}

// BookingResult echoes the computed fields of a successful booking request.
type BookingResult struct {
	ReservationID string `json:"id"`
	ListingID     string `json:"listingId"`
	CheckIn       Date   `json:"checkIn"`
	CheckOut      Date   `json:"checkOut"`
	Guests        int    `json:"guests"`
	Nights        int    `json:"nights"`
	TotalPrice    int64  `json:"totalPrice"`
	Status        string `json:"status"`
}

// Quote is a priced, non-persisted booking request.
type Quote struct {
	ListingID     string `json:"listingId"`
	CheckIn       Date   `json:"checkIn"`
	CheckOut      Date   `json:"checkOut"`
	Guests        int    `json:"guests"`
	Nights        int    `json:"nights"`
	PricePerNight int64  `json:"pricePerNight"`
	TotalPrice    int64  `json:"totalPrice"`
	Available     bool   `json:"available"`
}

// BookedRange is a non-cancelled reservation interval as exposed to availability calendars.
type BookedRange struct {
	CheckIn  Date `json:"checkIn"`
	CheckOut Date `json:"checkOut"`
}
