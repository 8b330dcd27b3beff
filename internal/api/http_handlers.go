package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"stayfinder/internal/domain"
	"stayfinder/internal/models"

	"github.com/go-chi/chi/v5"
)

type authResponse struct {
	Token string           `json:"token"`
	User  *models.Identity `json:"user"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	identity, token, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.IsHost)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: identity})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	identity, token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: identity})
}

func (s *HTTPServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"user": identity})
}

// listingFilter reads the search form query parameters.
func listingFilter(r *http.Request) (models.ListingFilter, error) {
	q := r.URL.Query()
	filter := models.ListingFilter{
		Location:     strings.TrimSpace(q.Get("location")),
		PropertyType: strings.TrimSpace(q.Get("type")),
	}

	var err error
	if filter.Guests, err = intParam(q.Get("guests"), "guests"); err != nil {
		return filter, err
	}
	minPrice, err := intParam(q.Get("minPrice"), "minPrice")
	if err != nil {
		return filter, err
	}
	maxPrice, err := intParam(q.Get("maxPrice"), "maxPrice")
	if err != nil {
		return filter, err
	}
	filter.MinPrice, filter.MaxPrice = int64(minPrice), int64(maxPrice)

	checkIn, checkOut := q.Get("checkIn"), q.Get("checkOut")
	if checkIn == "" && checkOut == "" {
		return filter, nil
	}
	if checkIn == "" || checkOut == "" {
		return filter, domain.ErrInvalidRange
	}
	in, err := models.ParseDate(checkIn)
	if err != nil {
		return filter, domain.ErrInvalidRange
	}
	out, err := models.ParseDate(checkOut)
	if err != nil {
		return filter, domain.ErrInvalidRange
	}
	filter.Stay = &models.DateRange{CheckIn: in, CheckOut: out}
	return filter, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, invalidParam(name)
	}
	return v, nil
}

func invalidParam(name string) error {
	return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, name)
}

func (s *HTTPServer) handleListProperties(w http.ResponseWriter, r *http.Request) {
	filter, err := listingFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listings, err := s.listings.ListActive(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *HTTPServer) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	listing, err := s.listings.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	booked, err := s.bookings.Availability(r.Context(), id, q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listingId": id, "booked": booked})
}

func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	guests := 1
	if raw := q.Get("guests"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, invalidParam("guests"))
			return
		}
		guests = v
	}

	quote, err := s.bookings.Quote(r.Context(), chi.URLParam(r, "id"), q.Get("checkIn"), q.Get("checkOut"), guests)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *HTTPServer) handleHostProperties(w http.ResponseWriter, r *http.Request) {
	host, _ := IdentityFromContext(r.Context())
	listings, err := s.listings.ListByHost(r.Context(), *host)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *HTTPServer) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	host, _ := IdentityFromContext(r.Context())
	listing, err := s.listings.CreateListing(r.Context(), *host, req.listing())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (s *HTTPServer) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	var req updateListingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	host, _ := IdentityFromContext(r.Context())
	listing, err := s.listings.UpdateListing(r.Context(), *host, chi.URLParam(r, "id"), req.update())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *HTTPServer) handleSetPropertyStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	host, _ := IdentityFromContext(r.Context())
	if err := s.listings.SetListingStatus(r.Context(), *host, chi.URLParam(r, "id"), req.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": req.Status})
}

func (s *HTTPServer) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	host, _ := IdentityFromContext(r.Context())
	if err := s.listings.DeleteListing(r.Context(), *host, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleHostBookings(w http.ResponseWriter, r *http.Request) {
	host, _ := IdentityFromContext(r.Context())
	reservations, err := s.bookings.ListHostReservations(r.Context(), *host)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	guest, _ := IdentityFromContext(r.Context())
	result, err := s.bookings.RequestBooking(r.Context(), domain.BookingRequest{
		ListingID:   req.PropertyID,
		RequesterID: guest.ID,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		Guests:      req.Guests,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *HTTPServer) handleGuestBookings(w http.ResponseWriter, r *http.Request) {
	guest, _ := IdentityFromContext(r.Context())
	reservations, err := s.bookings.ListGuestReservations(r.Context(), guest.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFromContext(r.Context())
	detail, err := s.bookings.GetReservation(r.Context(), chi.URLParam(r, "id"), caller.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFromContext(r.Context())
	reservation, err := s.bookings.CancelBooking(r.Context(), chi.URLParam(r, "id"), caller.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": reservation.Status})
}
