// Package memory implements the event and booking repositories in process.
// It keeps the same unique constraints as the database-backed stores and is
// used for local development (DB_DRIVER=memory) and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"devevents/internal/domain"
)

type bookingKey struct {
	eventID string
	email   string
}

// Store holds events and bookings behind a single lock, so the booking
// uniqueness check and the insert happen atomically, like a unique index.
type Store struct {
	mu       sync.RWMutex
	events   map[string]*domain.Event
	slugs    map[string]string
	bookings map[string]*domain.Booking
	byPair   map[bookingKey]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		events:   make(map[string]*domain.Event),
		slugs:    make(map[string]string),
		bookings: make(map[string]*domain.Booking),
		byPair:   make(map[bookingKey]string),
	}
}

// Events returns an EventRepository view of the store.
func (s *Store) Events() domain.EventRepository { return &eventRepository{s: s} }

// Bookings returns a BookingRepository view of the store.
func (s *Store) Bookings() domain.BookingRepository { return &bookingRepository{s: s} }

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	c.Agenda = append([]string(nil), e.Agenda...)
	c.Tags = append([]string(nil), e.Tags...)
	return &c
}

type eventRepository struct {
	s *Store
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.slugs[e.Slug]; ok {
		return domain.ErrDuplicateSlug
	}
	e.ID = uuid.NewString()
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	r.s.events[e.ID] = copyEvent(e)
	r.s.slugs[e.Slug] = e.ID
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(e), nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.slugs[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(r.s.events[id]), nil
}

func (r *eventRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.events[id]
	return ok, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	events := make([]*domain.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		events = append(events, copyEvent(e))
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (r *eventRepository) ListSimilar(ctx context.Context, slug string, limit int) ([]*domain.Event, error) {
	if limit <= 0 {
		return []*domain.Event{}, nil
	}
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]*domain.Event, 0, limit)
	for _, e := range all {
		if len(events) == limit {
			break
		}
		if e.Slug != slug {
			events = append(events, e)
		}
	}
	return events, nil
}

type bookingRepository struct {
	s *Store
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if err := domain.PrepareBooking(b); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[b.EventID]; !ok {
		return domain.ErrEventNotFound
	}
	key := bookingKey{eventID: b.EventID, email: b.Email}
	if _, ok := r.s.byPair[key]; ok {
		return domain.ErrBookingConflict
	}
	b.ID = uuid.NewString()
	stored := *b
	r.s.bookings[b.ID] = &stored
	r.s.byPair[key] = b.ID
	return nil
}

func (r *bookingRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byPair[bookingKey{eventID: eventID, email: email}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b := *r.s.bookings[id]
	return &b, nil
}

func (r *bookingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	bookings := r.filter(func(b *domain.Booking) bool { return b.EventID == eventID })
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
	})
	return bookings, nil
}

func (r *bookingRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	bookings := r.filter(func(b *domain.Booking) bool { return b.Email == email })
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}

func (r *bookingRepository) filter(keep func(*domain.Booking) bool) []*domain.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	bookings := make([]*domain.Booking, 0)
	for _, b := range r.s.bookings {
		if keep(b) {
			c := *b
			bookings = append(bookings, &c)
		}
	}
	return bookings
}
