package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventReservationCreated   = "reservation_created"
	EventReservationCancelled = "reservation_cancelled"
	EventListingCreated       = "listing_created"
	EventListingUpdated       = "listing_updated"
	EventListingDeleted       = "listing_deleted"
	EventUserRegistered       = "user_registered"
)

// ReservationEventPayload is the reservation snapshot delivered to subscribers.
type ReservationEventPayload struct {
	ReservationID string `json:"reservation_id"`
	ListingID     string `json:"listing_id"`
	GuestID       string `json:"guest_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Guests        int    `json:"guests"`
	Nights        int    `json:"nights"`
	TotalPrice    int64  `json:"total_price"`
	Status        string `json:"status"`
	ChangedBy     string `json:"changed_by,omitempty"`
}

// ListingEventPayload is the listing snapshot delivered to subscribers.
type ListingEventPayload struct {
	ListingID             string   `json:"listing_id"`
	HostID                string   `json:"host_id"`
	Title                 string   `json:"title,omitempty"`
	Status                string   `json:"status,omitempty"`
	CancelledReservations []string `json:"cancelled_reservations,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish runs subscribers synchronously in registration order and joins their errors.
// Every handler runs even when an earlier one fails.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishJSON serializes the payload and publishes an event. A nil bus drops the event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}

// LogHandler writes each event to logger as an audit line.
func LogHandler(logger *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		logger.Info().
			Str("event", event.Type).
			RawJSON("payload", event.Payload).
			Time("at", event.CreatedAt).
			Msg("Domain event")
		return nil
	}
}

// SubscribeAll registers handler for every event type this package defines.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	for _, eventType := range []string{
		EventReservationCreated,
		EventReservationCancelled,
		EventListingCreated,
		EventListingUpdated,
		EventListingDeleted,
		EventUserRegistered,
	} {
		b.Subscribe(eventType, handler)
	}
}
