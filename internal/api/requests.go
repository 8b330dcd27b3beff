package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"stayfinder/internal/domain"
	"stayfinder/internal/models"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	IsHost   bool   `json:"isHost"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type bookingRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
	CheckIn    string `json:"checkIn" validate:"required"`
	CheckOut   string `json:"checkOut" validate:"required"`
	Guests     int    `json:"guests"`

	// Accepted for client compatibility; the price is always recomputed.
	TotalPrice *float64 `json:"totalPrice,omitempty"`
}

type createListingRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Location    string   `json:"location" validate:"required,max=200"`
	Price       int64    `json:"price" validate:"required,gt=0"`
	Type        string   `json:"type" validate:"omitempty,max=50"`
	Description string   `json:"description" validate:"max=5000"`
	Bedrooms    int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int      `json:"bathrooms" validate:"gte=0"`
	MaxGuests   int      `json:"maxGuests" validate:"required,gt=0"`
	Amenities   []string `json:"amenities" validate:"dive,required,max=100"`
	Images      []string `json:"images" validate:"dive,url"`
}

func (r createListingRequest) listing() *models.Listing {
	return &models.Listing{
		Title:         strings.TrimSpace(r.Title),
		Location:      strings.TrimSpace(r.Location),
		PricePerNight: r.Price,
		PropertyType:  r.Type,
		Description:   r.Description,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		MaxGuests:     r.MaxGuests,
		Amenities:     r.Amenities,
		Images:        r.Images,
	}
}

type updateListingRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Location    *string  `json:"location" validate:"omitempty,min=1,max=200"`
	Price       *int64   `json:"price" validate:"omitempty,gt=0"`
	Type        *string  `json:"type" validate:"omitempty,max=50"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Bedrooms    *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms   *int     `json:"bathrooms" validate:"omitempty,gte=0"`
	MaxGuests   *int     `json:"maxGuests" validate:"omitempty,gt=0"`
	Amenities   []string `json:"amenities" validate:"omitempty,dive,required,max=100"`
}

func (r updateListingRequest) update() models.ListingUpdate {
	return models.ListingUpdate{
		Title:         r.Title,
		Location:      r.Location,
		PricePerNight: r.Price,
		MaxGuests:     r.MaxGuests,
		PropertyType:  r.Type,
		Description:   r.Description,
		Amenities:     r.Amenities,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields, then validates it.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", domain.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: body must contain a single JSON object", domain.ErrInvalidInput)
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}
