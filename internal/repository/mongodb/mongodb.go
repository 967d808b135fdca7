// Package mongodb implements the event and booking repositories backed by MongoDB.
// Documents use the field names of the events and bookings collections
// (eventId, createdAt, ...), so existing data can be served as is.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"devevents/internal/domain"
)

const (
	eventsCollection   = "events"
	bookingsCollection = "bookings"

	duplicateKeyCode = 11000
)

// Store owns the client connection and hands out repositories over its database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client for uri, pings the primary and selects database dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Events returns an EventRepository over the events collection.
func (s *Store) Events() domain.EventRepository {
	return NewEventRepository(s.db)
}

// Bookings returns a BookingRepository over the bookings collection.
func (s *Store) Bookings() domain.BookingRepository {
	return NewBookingRepository(s.db)
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique slug index on events and the booking indexes.
// unique_event_email is what serializes concurrent bookings.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.db.Collection(eventsCollection).Indexes().CreateMany(ctx, eventIndexes()); err != nil {
		return fmt.Errorf("create event indexes: %w", err)
	}
	if _, err := s.db.Collection(bookingsCollection).Indexes().CreateMany(ctx, bookingIndexes()); err != nil {
		return fmt.Errorf("create booking indexes: %w", err)
	}
	return nil
}

func eventIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_slug")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("createdAt")},
	}
}

func bookingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_event_email")},
		{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetName("eventId")},
		{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("eventId_createdAt")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email")},
	}
}

// isDuplicateKey reports whether err is a write error raised by a unique index.
func isDuplicateKey(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == duplicateKeyCode {
				return true
			}
		}
	}
	return false
}
