package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"devevents/internal/domain"
)

type bookingDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	EventID   bson.ObjectID `bson:"eventId"`
	Email     string        `bson:"email"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d bookingDocument) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:        d.ID.Hex(),
		EventID:   d.EventID.Hex(),
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type bookingRepository struct {
	events   *mongo.Collection
	bookings *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) domain.BookingRepository {
	return &bookingRepository{
		events:   db.Collection(eventsCollection),
		bookings: db.Collection(bookingsCollection),
	}
}

// Create checks the referenced event right before inserting. The check is not
// atomic with the insert; the unique_event_email index is what rejects
// duplicates from concurrent requests.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if err := domain.PrepareBooking(b); err != nil {
		return err
	}
	eventOID, err := bson.ObjectIDFromHex(b.EventID)
	if err != nil {
		return domain.ErrEventNotFound
	}
	ok, err := eventExists(ctx, r.events, eventOID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrEventNotFound
	}

	doc := bookingDocument{
		ID:        bson.NewObjectID(),
		EventID:   eventOID,
		Email:     b.Email,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if _, err := r.bookings.InsertOne(ctx, doc); err != nil {
		if isDuplicateKey(err) {
			return domain.ErrBookingConflict
		}
		return err
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (r *bookingRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	eventOID, err := bson.ObjectIDFromHex(eventID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc bookingDocument
	err = r.bookings.FindOne(ctx, bson.M{"eventId": eventOID, "email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *bookingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	eventOID, err := bson.ObjectIDFromHex(eventID)
	if err != nil {
		return []*domain.Booking{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.find(ctx, bson.M{"eventId": eventOID}, opts)
}

func (r *bookingRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"email": email}, opts)
}

func (r *bookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*domain.Booking, error) {
	cur, err := r.bookings.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	bookings := make([]*domain.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, d.toDomain())
	}
	return bookings, nil
}
