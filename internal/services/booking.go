package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devevents/internal/domain"
	"devevents/internal/events"
)

type bookingService struct {
	eventRepo   domain.EventRepository
	bookingRepo domain.BookingRepository
	validator   *BookingValidator
	publisher   events.Publisher
	logger      *slog.Logger
}

// NewBookingService creates a BookingService. publisher may be nil.
func NewBookingService(
	logger *slog.Logger,
	eventRepo domain.EventRepository,
	bookingRepo domain.BookingRepository,
	publisher events.Publisher,
) domain.BookingService {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	return &bookingService{
		eventRepo:   eventRepo,
		bookingRepo: bookingRepo,
		validator:   NewBookingValidator(eventRepo, bookingRepo),
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	normalized, err := s.validator.Validate(ctx, eventID, email)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking := domain.NewBooking(strings.TrimSpace(eventID), normalized, now, now)
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		// Lost a race with an identical request, or the event vanished after the pre-check.
		if errors.Is(err, domain.ErrDuplicateBooking) || errors.Is(err, domain.ErrEventNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.TopicBookingCreated, events.BookingCreated{Booking: booking}); err != nil {
		s.logger.WarnContext(ctx, "publish booking created", "booking_id", booking.ID, "err", err)
	}
	return booking, nil
}

func (s *bookingService) ListEventBookings(ctx context.Context, slug string) ([]*domain.Booking, error) {
	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	bookings, err := s.bookingRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by event: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) ListBookingsByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrMissingFields
	}
	bookings, err := s.bookingRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list bookings by email: %w", err)
	}
	return bookings, nil
}
