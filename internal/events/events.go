// Package events publishes booking domain events to subscribers.
package events

import (
	"context"

	"devevents/internal/domain"
)

// Event topic constants
const (
	TopicBookingCreated = "bookings.booking.created"
)

// BookingCreated is emitted after a booking has been stored.
type BookingCreated struct {
	Booking *domain.Booking `json:"booking"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
