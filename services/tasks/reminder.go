package tasks

import (
	"brandconnect/models"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypeBookingReminder = "reminder:booking"

// ReminderLead is how long before the appointment the reminder fires.
const ReminderLead = 24 * time.Hour

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.BookingID),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// ParseReminderTask decodes a reminder task body.
func ParseReminderTask(task *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reminder payload: %w", err)
	}
	if p.BookingID == "" {
		return p, fmt.Errorf("invalid reminder payload: missing bookingId")
	}
	return p, nil
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler enqueues booking reminders on the asynq queue.
type ReminderScheduler struct {
	client Enqueuer
	now    func() time.Time
}

func NewReminderScheduler(client Enqueuer) *ReminderScheduler {
	return &ReminderScheduler{client: client, now: time.Now}
}

// ScheduleReminder enqueues a reminder ReminderLead before the booking
// starts. Bookings starting sooner than that get no reminder.
func (s *ReminderScheduler) ScheduleReminder(ctx context.Context, b models.Booking) error {
	start, _, err := models.BookingWindow(b)
	if err != nil {
		return err
	}
	fireAt := start.Add(-ReminderLead)
	if !fireAt.After(s.now()) {
		return nil
	}

	task, opts, err := NewReminderTask(models.ReminderPayload{
		BookingID: b.ID,
		FireAt:    fireAt.UTC().Format(time.RFC3339),
	}, fireAt)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		if err == asynq.ErrTaskIDConflict {
			return nil
		}
		return fmt.Errorf("enqueue reminder for booking %s: %w", b.ID, err)
	}
	return nil
}
