package paymentRepo

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

type MongoPaymentRepo struct {
	intents  *mongo.Collection
	payments *mongo.Collection
}

func NewMongoPaymentRepo() PaymentRepository {
	db := database.DB()
	repo := &MongoPaymentRepo{
		intents:  db.Collection("payment_intents"),
		payments: db.Collection("payments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create payment indexes: %v\n", err)
	}
	return repo
}

func newContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.intents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create intent indexes: %w", err)
	}
	_, err := r.payments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "refund_of", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) CreateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.intents.InsertOne(ctx, intent); err != nil {
		return fmt.Errorf("error creating payment intent: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var intent models.PaymentIntent
	if err := r.intents.FindOne(ctx, bson.M{"id": id}).Decode(&intent); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("payment intent", id)
		}
		return nil, fmt.Errorf("error fetching payment intent %s: %w", id, err)
	}
	return &intent, nil
}

func (r *MongoPaymentRepo) SetIntentStatus(ctx context.Context, id string, status models.IntentStatus) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.intents.UpdateOne(ctx,
		bson.M{"id": id, "payment_id": bson.M{"$in": bson.A{nil, ""}}},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("error updating payment intent %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetIntent(ctx, id); err != nil {
			return err
		}
		return ErrIntentFinalized
	}
	return nil
}

func (r *MongoPaymentRepo) FinalizeIntent(ctx context.Context, intentID string, status models.IntentStatus, payment *models.Payment) error {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	return database.WithTransaction(ctx, r.intents.Database().Client(), func(sc mongo.SessionContext) error {
		res, err := r.intents.UpdateOne(sc,
			bson.M{"id": intentID, "payment_id": bson.M{"$in": bson.A{nil, ""}}},
			bson.M{"$set": bson.M{"status": status, "payment_id": payment.ID, "updated_at": time.Now().UTC()}},
		)
		if err != nil {
			return fmt.Errorf("update intent %s: %w", intentID, err)
		}
		if res.MatchedCount == 0 {
			return ErrIntentFinalized
		}
		if _, err := r.payments.InsertOne(sc, payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		return nil
	})
}

func (r *MongoPaymentRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.payments.InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("error creating payment: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var payment models.Payment
	if err := r.payments.FindOne(ctx, bson.M{"id": id}).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("payment", id)
		}
		return nil, fmt.Errorf("error fetching payment %s: %w", id, err)
	}
	return &payment, nil
}

func (r *MongoPaymentRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.payments.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("error decoding payments: %w", err)
	}
	return payments, nil
}

func (r *MongoPaymentRepo) RefundedTotal(ctx context.Context, paymentID string) (int64, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"refund_of": paymentID}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cursor, err := r.payments.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("error summing refunds: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("error decoding refund total: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (r *MongoPaymentRepo) AttachBooking(ctx context.Context, paymentID, bookingID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.payments.UpdateOne(ctx,
		bson.M{"id": paymentID, "booking_id": bson.M{"$in": bson.A{nil, "", bookingID}}},
		bson.M{"$set": bson.M{"booking_id": bookingID, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("error attaching booking to payment %s: %w", paymentID, err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetPayment(ctx, paymentID); err != nil {
			return err
		}
		return ErrAlreadyAttached
	}
	return nil
}

func (r *MongoPaymentRepo) DetachBooking(ctx context.Context, paymentID, bookingID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	_, err := r.payments.UpdateOne(ctx,
		bson.M{"id": paymentID, "booking_id": bookingID},
		bson.M{"$unset": bson.M{"booking_id": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("error detaching booking from payment %s: %w", paymentID, err)
	}
	return nil
}
