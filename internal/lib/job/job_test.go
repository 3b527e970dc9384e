package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/kennywood-api/internal/config"
	"github.com/deppfellow/kennywood-api/internal/lib/email"
	"github.com/deppfellow/kennywood-api/internal/model/customer"
	"github.com/deppfellow/kennywood-api/internal/testutil"
)

type sentReminder struct {
	to   string
	data email.ReminderData
}

type fakeSender struct {
	sent []sentReminder
	err  error
}

func (f *fakeSender) SendItineraryReminder(to string, data email.ReminderData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentReminder{to: to, data: data})
	return nil
}

var visit = time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)

func newWorker(t *testing.T) (*JobService, *testutil.Memory, *fakeSender) {
	t.Helper()
	mem := testutil.NewPark()
	sender := &fakeSender{}
	j := &JobService{logger: testutil.NopLogger(), now: time.Now}
	j.InitHandlers(mem.Itineraries, mem.Customers, sender)
	return j, mem, sender
}

func reminderTask(t *testing.T, id int64, start time.Time) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(ReminderPayload{ItineraryID: id, StartTime: start.Unix()})
	require.NoError(t, err)
	return asynq.NewTask(TaskItineraryReminder, payload)
}

func TestReminderAt(t *testing.T) {
	now := visit.Add(-3 * time.Hour)

	at, ok := ReminderAt(visit, time.Hour, now)
	require.True(t, ok)
	assert.Equal(t, visit.Add(-time.Hour), at)

	_, ok = ReminderAt(visit, 4*time.Hour, now)
	assert.False(t, ok)

	_, ok = ReminderAt(visit, 3*time.Hour, now)
	assert.False(t, ok)
}

func TestNewItineraryReminderTask(t *testing.T) {
	mem := testutil.NewPark()
	it, err := mem.Itineraries.Insert(context.Background(), newVisit(42, 5))
	require.NoError(t, err)

	task, err := NewItineraryReminderTask(it)
	require.NoError(t, err)

	assert.Equal(t, TaskItineraryReminder, task.Type())

	var p ReminderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, it.ID, p.ItineraryID)
	assert.Equal(t, visit.Unix(), p.StartTime)

	assert.NotEqual(t, ReminderTaskID(it), ReminderTaskID(withStart(it, visit.Add(time.Hour))))
}

func TestScheduleReminder_SkipsWithoutEnqueueing(t *testing.T) {
	mem := testutil.NewPark()
	it, err := mem.Itineraries.Insert(context.Background(), newVisit(42, 5))
	require.NoError(t, err)

	// Client is nil: any attempt to enqueue would panic.
	disabled := &JobService{logger: testutil.NopLogger(), now: time.Now, reminder: config.ReminderConfig{Enabled: false, LeadTime: time.Hour}}
	assert.NoError(t, disabled.ScheduleReminder(context.Background(), it))

	tooLate := &JobService{
		logger:   testutil.NopLogger(),
		now:      func() time.Time { return visit.Add(-30 * time.Minute) },
		reminder: config.ReminderConfig{Enabled: true, LeadTime: time.Hour},
	}
	assert.NoError(t, tooLate.ScheduleReminder(context.Background(), it))
}

func TestHandleReminder_SendsEmail(t *testing.T) {
	j, mem, sender := newWorker(t)
	it, err := mem.Itineraries.Insert(context.Background(), newVisit(42, 5))
	require.NoError(t, err)

	require.NoError(t, j.handleItineraryReminderTask(context.Background(), reminderTask(t, it.ID, visit)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "dana@example.com", sender.sent[0].to)
	assert.Equal(t, email.ReminderData{
		FirstName:      "Dana",
		AttractionName: "Phantom's Revenge",
		AreaName:       "Lost Kennywood",
		StartTime:      "2023-06-01T10:00:00",
	}, sender.sent[0].data)
}

func TestHandleReminder_DropsDeletedItinerary(t *testing.T) {
	j, _, sender := newWorker(t)

	require.NoError(t, j.handleItineraryReminderTask(context.Background(), reminderTask(t, 404, visit)))
	assert.Empty(t, sender.sent)
}

func TestHandleReminder_DropsStaleTask(t *testing.T) {
	j, mem, sender := newWorker(t)
	it, err := mem.Itineraries.Insert(context.Background(), newVisit(42, 5))
	require.NoError(t, err)

	require.NoError(t, j.handleItineraryReminderTask(context.Background(), reminderTask(t, it.ID, visit.Add(-time.Hour))))
	assert.Empty(t, sender.sent)
}

func TestHandleReminder_DropsCustomerWithoutEmail(t *testing.T) {
	j, mem, sender := newWorker(t)
	mem.AddCustomer(customer.Customer{ID: 50, UserID: "user_50"})
	it, err := mem.Itineraries.Insert(context.Background(), newVisit(50, 5))
	require.NoError(t, err)

	require.NoError(t, j.handleItineraryReminderTask(context.Background(), reminderTask(t, it.ID, visit)))
	assert.Empty(t, sender.sent)
}

func TestHandleReminder_RetriesOnSendFailure(t *testing.T) {
	j, mem, sender := newWorker(t)
	sender.err = errors.New("resend unavailable")
	it, err := mem.Itineraries.Insert(context.Background(), newVisit(42, 5))
	require.NoError(t, err)

	err = j.handleItineraryReminderTask(context.Background(), reminderTask(t, it.ID, visit))
	assert.ErrorIs(t, err, sender.err)
}

func TestHandleReminder_BadPayloadSkipsRetry(t *testing.T) {
	j, _, _ := newWorker(t)

	err := j.handleItineraryReminderTask(context.Background(), asynq.NewTask(TaskItineraryReminder, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
