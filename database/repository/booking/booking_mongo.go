package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brandconnect/database"
	"brandconnect/models"
	"brandconnect/services/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var holdingStatuses = bson.A{models.BookingConfirmed, models.BookingInProgress}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll     *mongo.Collection
	dayLocks *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	repo := &MongoBookingRepo{
		coll:     db.Collection("bookings"),
		dayLocks: db.Collection("booking_day_locks"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

// newContext bounds a repository call.
func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		{
			Keys:    bson.D{{Key: "creative_id", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("creative_date_status_idx"),
		},
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("client_created_idx")},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("status_created_idx")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// touchDay writes the creative's day document inside the transaction. Two
// transactions reserving the same day then conflict on this write, which
// turns the read-check-insert sequence into a serialized check-and-set.
func (r *MongoBookingRepo) touchDay(sc mongo.SessionContext, creativeID, date string) error {
	_, err := r.dayLocks.UpdateOne(sc,
		bson.M{"_id": creativeID + "|" + date},
		bson.M{"$inc": bson.M{"seq": 1}, "$set": bson.M{"updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MongoBookingRepo) holdingOn(ctx context.Context, creativeID, date string) ([]models.Booking, error) {
	filter := bson.M{
		"creative_id": creativeID,
		"date":        date,
		"status":      bson.M{"$in": holdingStatuses},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding holding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding holding bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) CreateIfSlotFree(ctx context.Context, b *models.Booking) error {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	err := database.WithTransaction(ctx, r.coll.Database().Client(), func(sc mongo.SessionContext) error {
		if err := r.touchDay(sc, b.CreativeID, b.Date); err != nil {
			return fmt.Errorf("lock creative day: %w", err)
		}
		holding, err := r.holdingOn(sc, b.CreativeID, b.Date)
		if err != nil {
			return err
		}
		if _, clash := FirstConflict(*b, holding); clash {
			return errs.SlotUnavailable(b.CreativeID, b.Date, b.StartTime, b.EndTime)
		}
		if _, err := r.coll.InsertOne(sc, b); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create booking transaction: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("booking", id)
		}
		return nil, fmt.Errorf("error fetching booking with id %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status models.BookingStatus) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	var updated models.Booking
	err := database.WithTransaction(ctx, r.coll.Database().Client(), func(sc mongo.SessionContext) error {
		var current models.Booking
		if err := r.coll.FindOne(sc, bson.M{"id": id}).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return errs.NotFound("booking", id)
			}
			return err
		}
		if current.Version != expectedVersion {
			return ErrVersionConflict
		}

		next := current
		next.Status = status
		if next.HoldsSlot() && !current.HoldsSlot() {
			if err := r.touchDay(sc, current.CreativeID, current.Date); err != nil {
				return fmt.Errorf("lock creative day: %w", err)
			}
			holding, err := r.holdingOn(sc, current.CreativeID, current.Date)
			if err != nil {
				return err
			}
			if _, clash := FirstConflict(next, holding); clash {
				return errs.SlotUnavailable(current.CreativeID, current.Date, current.StartTime, current.EndTime)
			}
		}

		now := time.Now().UTC()
		res := r.coll.FindOneAndUpdate(sc,
			bson.M{"id": id, "version": expectedVersion},
			bson.M{"$set": bson.M{"status": status, "updated_at": now}, "$inc": bson.M{"version": 1}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		if err := res.Decode(&updated); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrVersionConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update booking %s: %w", id, err)
	}
	return &updated, nil
}

func (r *MongoBookingRepo) SetPaymentStatus(ctx context.Context, id string, status models.BookingPaymentStatus, paymentID string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"payment_status": status, "updated_at": time.Now().UTC()}
	if paymentID != "" {
		set["payment_id"] = paymentID
	}
	var updated models.Booking
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("booking", id)
		}
		return nil, fmt.Errorf("error updating payment status of booking %s: %w", id, err)
	}
	return &updated, nil
}

func (r *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.ClientID != "" {
		query["client_id"] = filter.ClientID
	}
	if filter.CreativeID != "" {
		query["creative_id"] = filter.CreativeID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) ListHoldingSlots(ctx context.Context, creativeID, date string) ([]models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()
	return r.holdingOn(ctx, creativeID, date)
}
