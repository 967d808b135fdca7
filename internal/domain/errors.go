package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories, services and controllers.
// Controllers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingFields is returned when a booking request lacks the event ID or the email.
	ErrMissingFields = fmt.Errorf("%w: event id and email are required", ErrInvalidInput)
	// ErrInvalidEmail is returned when an email does not look like local@domain.tld.
	ErrInvalidEmail = fmt.Errorf("%w: please provide a valid email address", ErrInvalidInput)

	// ErrEventNotFound is returned when a booking references an event that does not exist.
	ErrEventNotFound = fmt.Errorf("event %w", ErrNotFound)

	// ErrDuplicateBooking is returned when a booking for the same event and email already exists.
	ErrDuplicateBooking = errors.New("booking already exists for this event and email")
	// ErrBookingConflict is returned by a BookingRepository when its unique (event, email)
	// constraint rejected the write. It wraps ErrDuplicateBooking.
	ErrBookingConflict = fmt.Errorf("%w: unique constraint violation", ErrDuplicateBooking)

	// ErrDuplicateSlug is returned when an event slug is already taken.
	ErrDuplicateSlug = errors.New("event slug already in use")
)
