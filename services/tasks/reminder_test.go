package tasks

import (
	"context"
	"testing"
	"time"

	"brandconnect/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "reminder"}, nil
}

func TestScheduleReminder(t *testing.T) {
	q := &recordingEnqueuer{}
	s := NewReminderScheduler(q)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	b := models.Booking{ID: "b1", Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00"}
	require.NoError(t, s.ScheduleReminder(context.Background(), b))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, TypeBookingReminder, q.tasks[0].Type())

	p, err := ParseReminderTask(q.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, "b1", p.BookingID)
	// 10:00 EAT is 07:00 UTC; the reminder fires a day earlier.
	assert.Equal(t, "2025-03-09T07:00:00Z", p.FireAt)
}

func TestScheduleReminder_TooLate(t *testing.T) {
	q := &recordingEnqueuer{}
	s := NewReminderScheduler(q)
	s.now = func() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) }

	b := models.Booking{ID: "b1", Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00"}
	require.NoError(t, s.ScheduleReminder(context.Background(), b))
	assert.Empty(t, q.tasks)
}

func TestScheduleReminder_DuplicateIsNotAnError(t *testing.T) {
	q := &recordingEnqueuer{err: asynq.ErrTaskIDConflict}
	s := NewReminderScheduler(q)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	b := models.Booking{ID: "b1", Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00"}
	assert.NoError(t, s.ScheduleReminder(context.Background(), b))
}

func TestParseReminderTask_Invalid(t *testing.T) {
	_, err := ParseReminderTask(asynq.NewTask(TypeBookingReminder, []byte("{")))
	assert.Error(t, err)
	_, err = ParseReminderTask(asynq.NewTask(TypeBookingReminder, []byte(`{"fireAt":"x"}`)))
	assert.Error(t, err)
}
