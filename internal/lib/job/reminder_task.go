package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/deppfellow/kennywood-api/internal/model/itinerary"
)

const (
	TaskItineraryReminder = "itinerary:reminder"
)

// ReminderPayload pins the starttime the reminder was scheduled for, so a
// task left over from before an update can recognise itself as stale.
type ReminderPayload struct {
	ItineraryID int64 `json:"itinerary_id"`
	StartTime   int64 `json:"start_time"`
}

// ReminderTaskID is unique per itinerary and starttime, which makes
// rescheduling the same visit a no-op.
func ReminderTaskID(it *itinerary.Itinerary) string {
	return fmt.Sprintf("%s:%d:%d", TaskItineraryReminder, it.ID, it.StartTime.Unix())
}

func NewItineraryReminderTask(it *itinerary.Itinerary) (*asynq.Task, error) {
	payload, err := json.Marshal(ReminderPayload{
		ItineraryID: it.ID,
		StartTime:   it.StartTime.Unix(),
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskItineraryReminder,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
		asynq.TaskID(ReminderTaskID(it)),
	), nil
}

// ReminderAt reports when the reminder for a visit at start should fire, and
// false when that moment has already passed.
func ReminderAt(start time.Time, lead time.Duration, now time.Time) (time.Time, bool) {
	at := start.Add(-lead)
	if !at.After(now) {
		return time.Time{}, false
	}
	return at, true
}

// ScheduleReminder enqueues the reminder for it. Disabled reminders and
// visits too close to be worth reminding about are skipped without error.
func (j *JobService) ScheduleReminder(ctx context.Context, it *itinerary.Itinerary) error {
	if !j.reminder.Enabled {
		return nil
	}

	at, ok := ReminderAt(it.StartTime, j.reminder.LeadTime, j.now())
	if !ok {
		j.logger.Debug().
			Int64("itinerary_id", it.ID).
			Msg("itinerary starts too soon for a reminder")
		return nil
	}

	task, err := NewItineraryReminderTask(it)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}

	info, err := j.Client.EnqueueContext(ctx, task, asynq.ProcessAt(at))
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}

	j.logger.Info().
		Str("task_id", info.ID).
		Int64("itinerary_id", it.ID).
		Time("process_at", at).
		Msg("scheduled itinerary reminder")

	return nil
}
