package postgres

import (
	"context"
	"database/sql"
	"errors"

	"devevents/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

// Create inserts the booking only if its event exists, in the same statement,
// so an event removed after the service's pre-check is still caught. The
// unique_event_email constraint decides between concurrent inserts.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if err := domain.PrepareBooking(b); err != nil {
		return err
	}
	eventID, ok := canonicalID(b.EventID)
	if !ok {
		return domain.ErrEventNotFound
	}
	b.EventID = eventID
	query := `
		INSERT INTO bookings (event_id, email, created_at, updated_at)
		SELECT $1::uuid, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM events WHERE id = $1::uuid)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, b.EventID, b.Email, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows), violates(err, codeForeignKeyViolation):
		return domain.ErrEventNotFound
	case violates(err, codeUniqueViolation):
		return domain.ErrBookingConflict
	default:
		return err
	}
}

func (r *bookingRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	eventID, ok := canonicalID(eventID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	query := `
		SELECT id, event_id, email, created_at, updated_at
		FROM bookings
		WHERE event_id = $1 AND email = $2
	`
	b := &domain.Booking{}
	err := r.DB.QueryRowContext(ctx, query, eventID, email).
		Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	eventID, ok := canonicalID(eventID)
	if !ok {
		return []*domain.Booking{}, nil
	}
	query := `
		SELECT id, event_id, email, created_at, updated_at
		FROM bookings
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, eventID)
}

func (r *bookingRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	query := `
		SELECT id, event_id, email, created_at, updated_at
		FROM bookings
		WHERE email = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, email)
}

func (r *bookingRepository) list(ctx context.Context, query string, arg any) ([]*domain.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b := &domain.Booking{}
		if err := rows.Scan(&b.ID, &b.EventID, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
