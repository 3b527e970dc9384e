package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/deppfellow/kennywood-api/internal/lib/email"
	"github.com/deppfellow/kennywood-api/internal/model/customer"
	"github.com/deppfellow/kennywood-api/internal/model/itinerary"
)

type ItineraryFinder interface {
	GetByID(ctx context.Context, id int64) (*itinerary.Itinerary, error)
}

type CustomerFinder interface {
	GetByID(ctx context.Context, id int64) (*customer.Customer, error)
}

type ReminderSender interface {
	SendItineraryReminder(to string, data email.ReminderData) error
}

// InitHandlers gives the worker what it needs to process tasks.
func (j *JobService) InitHandlers(itineraries ItineraryFinder, customers CustomerFinder, sender ReminderSender) {
	j.itineraries = itineraries
	j.customers = customers
	j.sender = sender
}

func (j *JobService) handleItineraryReminderTask(ctx context.Context, t *asynq.Task) error {
	var p ReminderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal itinerary reminder payload: %w: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With().
		Str("type", TaskItineraryReminder).
		Int64("itinerary_id", p.ItineraryID).
		Logger()

	it, err := j.itineraries.GetByID(ctx, p.ItineraryID)
	if err != nil {
		if errors.Is(err, itinerary.ErrNotFound) {
			logger.Info().Msg("itinerary deleted, dropping reminder")
			return nil
		}
		return err
	}

	if it.StartTime.Unix() != p.StartTime {
		logger.Info().Msg("itinerary rescheduled, dropping stale reminder")
		return nil
	}

	c, err := j.customers.GetByID(ctx, it.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			logger.Info().Msg("customer gone, dropping reminder")
			return nil
		}
		return err
	}

	if c.Email == "" {
		logger.Info().Int64("customer_id", c.ID).Msg("customer has no email, dropping reminder")
		return nil
	}

	err = j.sender.SendItineraryReminder(c.Email, email.ReminderData{
		FirstName:      c.FirstName,
		AttractionName: it.Attraction.Name,
		AreaName:       it.Attraction.Area.Name,
		StartTime:      itinerary.FormatStartTime(it.StartTime),
	})
	if err != nil {
		logger.Error().Err(err).Str("to", c.Email).Msg("failed to send itinerary reminder")
		// asynq retries failed tasks.
		return err
	}

	logger.Info().Str("to", c.Email).Msg("sent itinerary reminder")

	return nil
}
