package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Booking is a visitor's reservation of a spot at an event.
// swagger:model Booking
type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBooking creates a new Booking. ID is set by the repository on create.
func NewBooking(eventID, email string, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		EventID:   eventID,
		Email:     email,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email has the shape local@domain.tld.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// PrepareBooking normalizes b in place and checks the fields every store
// requires before a write. It returns ErrMissingFields or ErrInvalidEmail.
// Referential integrity is checked by the store itself.
func PrepareBooking(b *Booking) error {
	b.EventID = strings.TrimSpace(b.EventID)
	b.Email = NormalizeEmail(b.Email)
	if b.EventID == "" || b.Email == "" {
		return ErrMissingFields
	}
	if !ValidEmail(b.Email) {
		return ErrInvalidEmail
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	return nil
}

// BookingRepository defines storage operations for bookings.
// Implementations enforce a unique (event, email) constraint.
type BookingRepository interface {
	// Create runs PrepareBooking, verifies the event still exists and inserts the booking,
	// setting its ID. Returns ErrEventNotFound when the event is missing and
	// ErrBookingConflict when the unique constraint rejects the insert.
	Create(ctx context.Context, b *Booking) error
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Booking, error)
	// ListByEventID returns the event's bookings, oldest first.
	ListByEventID(ctx context.Context, eventID string) ([]*Booking, error)
	// ListByEmail returns all bookings made with email, newest first.
	ListByEmail(ctx context.Context, email string) ([]*Booking, error)
}

// BookingService defines visitor-facing booking operations.
type BookingService interface {
	// CreateBooking validates and stores a booking for the event. Duplicates fail with an
	// error matching ErrDuplicateBooking, whether caught by the pre-check or the store.
	CreateBooking(ctx context.Context, eventID, email string) (*Booking, error)
	ListEventBookings(ctx context.Context, slug string) ([]*Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]*Booking, error)
}
