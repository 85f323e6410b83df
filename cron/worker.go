package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	userRepo "brandconnect/database/repository/user"
	"brandconnect/models"
	"brandconnect/services/errs"
	"brandconnect/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingGetter is the part of the booking repository the worker reads.
type BookingGetter interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

// ReminderSender delivers the reminder message.
type ReminderSender interface {
	SendReminder(ctx context.Context, booking models.Booking, creative, client models.User) bool
}

type ReminderWorker struct {
	bookings BookingGetter
	users    userRepo.UserRepository
	sender   ReminderSender
	logger   *zap.Logger
}

func NewReminderWorker(bookings BookingGetter, users userRepo.UserRepository, sender ReminderSender, logger *zap.Logger) *ReminderWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderWorker{bookings: bookings, users: users, sender: sender, logger: logger}
}

// HandleReminder processes one reminder:booking task. Bookings that are gone
// or no longer active are skipped without retry; a failed SMS is logged and
// not retried either, so the client is never texted twice.
func (w *ReminderWorker) HandleReminder(ctx context.Context, task *asynq.Task) error {
	p, err := tasks.ParseReminderTask(task)
	if err != nil {
		w.logger.Error("invalid reminder payload", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	b, err := w.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			w.logger.Warn("reminder for unknown booking", zap.String("bookingId", p.BookingID))
			return fmt.Errorf("booking %s: %w", p.BookingID, asynq.SkipRetry)
		}
		return fmt.Errorf("load booking %s: %w", p.BookingID, err)
	}
	if b.Status == models.BookingCancelled || b.Status == models.BookingCompleted {
		w.logger.Info("reminder skipped", zap.String("bookingId", b.ID), zap.String("status", string(b.Status)))
		return nil
	}

	client, err := w.users.GetByIDWithProjection(ctx, b.ClientID, userRepo.ContactProjection)
	if err != nil {
		return fmt.Errorf("load client %s: %w", b.ClientID, err)
	}
	creative, err := w.users.GetByIDWithProjection(ctx, b.CreativeID, userRepo.ContactProjection)
	if err != nil {
		return fmt.Errorf("load creative %s: %w", b.CreativeID, err)
	}

	if !w.sender.SendReminder(ctx, *b, *creative, *client) {
		w.logger.Warn("reminder not delivered", zap.String("bookingId", b.ID), zap.String("fireAt", p.FireAt))
	}
	return nil
}

// InitReminderWorker starts the asynq server in the background and returns
// it so the caller can shut it down.
func InitReminderWorker(w *ReminderWorker, redisOpts asynq.RedisClientOpt) *asynq.Server {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingReminder, w.HandleReminder)

	go func() {
		w.logger.Info("starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Start(mux); err != nil {
				if errors.Is(err, asynq.ErrServerClosed) {
					return
				}
				w.logger.Error("reminder worker failed to start",
					zap.Int("attempt", attempts),
					zap.Int("maxAttempts", maxAttempts),
					zap.Error(err),
				)
				if attempts == maxAttempts {
					w.logger.Fatal("reminder worker: max retry attempts reached")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}
