package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devevents/internal/domain"
)

// BookingValidator runs the checks that let a booking request fail fast with
// a precise reason. Passing validation does not guarantee the insert succeeds:
// a concurrent request can book the same pair in between, which the store's
// unique constraint then rejects.
type BookingValidator struct {
	events   domain.EventRepository
	bookings domain.BookingRepository
}

func NewBookingValidator(events domain.EventRepository, bookings domain.BookingRepository) *BookingValidator {
	return &BookingValidator{events: events, bookings: bookings}
}

// Validate checks, in order, that both fields are present, that the email is
// well formed, that the event exists and that no booking exists yet for the
// pair. It returns the normalized email.
func (v *BookingValidator) Validate(ctx context.Context, eventID, email string) (string, error) {
	eventID = strings.TrimSpace(eventID)
	email = domain.NormalizeEmail(email)
	if eventID == "" || email == "" {
		return "", domain.ErrMissingFields
	}
	if !domain.ValidEmail(email) {
		return "", domain.ErrInvalidEmail
	}

	ok, err := v.events.Exists(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("check event: %w", err)
	}
	if !ok {
		return "", domain.ErrEventNotFound
	}

	_, err = v.bookings.GetByEventAndEmail(ctx, eventID, email)
	switch {
	case err == nil:
		return "", domain.ErrDuplicateBooking
	case errors.Is(err, domain.ErrNotFound):
		return email, nil
	default:
		return "", fmt.Errorf("check existing booking: %w", err)
	}
}
