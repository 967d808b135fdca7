package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"devevents/internal/domain"
)

func TestBookingRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		booking *domain.Booking
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name:    "success normalizes email",
			booking: &domain.Booking{EventID: testEventID, Email: "User@Example.com ", CreatedAt: now, UpdatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO bookings \(event_id, email, created_at, updated_at\)\s+SELECT .* WHERE EXISTS \(SELECT 1 FROM events`).
					WithArgs(testEventID, "user@example.com", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b-1"))
			},
			wantID: "b-1",
		},
		{
			name:    "event missing at write time",
			booking: &domain.Booking{EventID: testEventID, Email: "a@b.com", CreatedAt: now, UpdatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO bookings`).
					WithArgs(testEventID, "a@b.com", now, now).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrEventNotFound,
		},
		{
			name:    "foreign key violation",
			booking: &domain.Booking{EventID: testEventID, Email: "a@b.com", CreatedAt: now, UpdatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO bookings`).
					WillReturnError(&pq.Error{Code: "23503", Constraint: "bookings_event_id_fkey"})
			},
			wantErr: domain.ErrEventNotFound,
		},
		{
			name:    "unique violation is a conflict",
			booking: &domain.Booking{EventID: testEventID, Email: "a@b.com", CreatedAt: now, UpdatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO bookings`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "unique_event_email"})
			},
			wantErr: domain.ErrBookingConflict,
		},
		{
			name:    "malformed event id never reaches the database",
			booking: &domain.Booking{EventID: "nope", Email: "a@b.com"},
			mock:    func(mock sqlmock.Sqlmock) {},
			wantErr: domain.ErrEventNotFound,
		},
		{
			name:    "missing email",
			booking: &domain.Booking{EventID: testEventID, Email: "  "},
			mock:    func(mock sqlmock.Sqlmock) {},
			wantErr: domain.ErrMissingFields,
		},
		{
			name:    "db error passes through",
			booking: &domain.Booking{EventID: testEventID, Email: "a@b.com", CreatedAt: now, UpdatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO bookings`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewBookingRepository(db)
			err = repo.Create(ctx, tt.booking)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.booking.ID)
			require.Equal(t, "user@example.com", tt.booking.Email)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_Create_StoresCanonicalEventID(t *testing.T) {
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(testEventID, "a@b.com", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b-1"))

	b := &domain.Booking{EventID: "urn:uuid:" + strings.ToUpper(testEventID), Email: "a@b.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewBookingRepository(db).Create(context.Background(), b))
	require.Equal(t, testEventID, b.EventID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByEventAndEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, event_id, email, created_at, updated_at\s+FROM bookings\s+WHERE event_id = \$1 AND email = \$2`).
			WithArgs(testEventID, "a@b.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "email", "created_at", "updated_at"}).
				AddRow("b-1", testEventID, "a@b.com", now, now))

		got, err := NewBookingRepository(db).GetByEventAndEmail(ctx, testEventID, "a@b.com")
		require.NoError(t, err)
		require.Equal(t, &domain.Booking{ID: "b-1", EventID: testEventID, Email: "a@b.com", CreatedAt: now, UpdatedAt: now}, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM bookings`).
			WithArgs(testEventID, "a@b.com").
			WillReturnError(sql.ErrNoRows)

		_, err = NewBookingRepository(db).GetByEventAndEmail(ctx, testEventID, "a@b.com")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_ListByEventID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t1 := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	mock.ExpectQuery(`WHERE event_id = \$1\s+ORDER BY created_at ASC`).
		WithArgs(testEventID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "email", "created_at", "updated_at"}).
			AddRow("b-1", testEventID, "a@b.com", t1, t1).
			AddRow("b-2", testEventID, "c@d.com", t2, t2))

	got, err := NewBookingRepository(db).ListByEventID(context.Background(), testEventID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b-1", got[0].ID)
	require.Equal(t, "b-2", got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE email = \$1\s+ORDER BY created_at DESC`).
		WithArgs("a@b.com").
		WillReturnError(sql.ErrConnDone)

	_, err = NewBookingRepository(db).ListByEmail(context.Background(), "a@b.com")
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}
