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

const testEventID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

var eventColumnNames = []string{"id", "title", "slug", "description", "overview", "image", "venue", "location", "event_date", "event_time", "mode", "audience", "agenda", "organizer", "tags", "created_at", "updated_at"}

func fixtureTime() time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func fixtureEvent() *domain.Event {
	return &domain.Event{
		Title:       "React Conf 2025",
		Slug:        "react-conf-2025",
		Description: "The React conference",
		Overview:    "Two days of talks",
		Image:       "/images/event1.png",
		Venue:       "Moscone Center",
		Location:    "San Francisco, CA",
		Date:        "2025-03-15",
		Time:        "09:00:00",
		Mode:        domain.EventModeHybrid,
		Audience:    "Developers",
		Agenda:      []string{"Keynote", "Talks"},
		Organizer:   "Meta",
		Tags:        []string{"react", "frontend"},
		CreatedAt:   fixtureTime(),
		UpdatedAt:   fixtureTime(),
	}
}

func addEventRow(rows *sqlmock.Rows, id, slug string) *sqlmock.Rows {
	e := fixtureEvent()
	return rows.AddRow(id, e.Title, slug, e.Description, e.Overview, e.Image, e.Venue, e.Location,
		e.Date, e.Time, "hybrid", e.Audience, "{Keynote,Talks}", e.Organizer, "{react,frontend}",
		e.CreatedAt, e.UpdatedAt)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(title, slug, description`).
					WithArgs("React Conf 2025", "react-conf-2025", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
						sqlmock.AnyArg(), sqlmock.AnyArg(), "2025-03-15", "09:00:00", "hybrid", sqlmock.AnyArg(),
						sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), fixtureTime(), fixtureTime()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testEventID))
			},
			wantID: testEventID,
		},
		{
			name: "duplicate slug",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "unique_event_slug"})
			},
			wantErr: domain.ErrDuplicateSlug,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
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
			repo := NewEventRepository(db)
			ev := fixtureEvent()
			err = repo.Create(ctx, ev)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, ev.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, title, slug, .* FROM events WHERE slug = \$1`).
			WithArgs("react-conf-2025").
			WillReturnRows(addEventRow(sqlmock.NewRows(eventColumnNames), testEventID, "react-conf-2025"))

		got, err := NewEventRepository(db).GetBySlug(ctx, "react-conf-2025")
		require.NoError(t, err)
		want := fixtureEvent()
		want.ID = testEventID
		require.Equal(t, want, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM events WHERE slug = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := NewEventRepository(db).GetBySlug(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.Nil(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_GetByID_MalformedID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	got, err := NewEventRepository(db).GetByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Exists(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
		mock func(mock sqlmock.Sqlmock)
		want bool
	}{
		{
			name: "exists",
			id:   testEventID,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "missing",
			id:   testEventID,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name: "urn form is bound canonically",
			id:   "urn:uuid:" + strings.ToUpper(testEventID),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "malformed id skips the query",
			id:   "abc",
			mock: func(mock sqlmock.Sqlmock) {},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewEventRepository(db).Exists(ctx, tt.id)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListSimilar(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(eventColumnNames)
	addEventRow(rows, "11111111-1111-1111-1111-111111111111", "devhack-2025")
	addEventRow(rows, "22222222-2222-2222-2222-222222222222", "typescript-summit")
	mock.ExpectQuery(`FROM events WHERE slug <> \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("react-conf-2025", 3).
		WillReturnRows(rows)

	got, err := NewEventRepository(db).ListSimilar(context.Background(), "react-conf-2025", 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "devhack-2025", got[0].Slug)
	require.Equal(t, []string{"react", "frontend"}, got[1].Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_List_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM events ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(eventColumnNames))

	got, err := NewEventRepository(db).List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
