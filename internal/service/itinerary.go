package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/kennywood-api/internal/model/customer"
	"github.com/deppfellow/kennywood-api/internal/model/itinerary"
	"github.com/deppfellow/kennywood-api/internal/model/park"
)

// ItineraryStore is the persistence the itinerary operations need. Missing
// rows are reported with an error matching itinerary.ErrNotFound.
type ItineraryStore interface {
	GetByID(ctx context.Context, id int64) (*itinerary.Itinerary, error)
	List(ctx context.Context, filter itinerary.Filter) ([]itinerary.Itinerary, error)
	Insert(ctx context.Context, it *itinerary.Itinerary) (*itinerary.Itinerary, error)
	Save(ctx context.Context, it *itinerary.Itinerary) (*itinerary.Itinerary, error)
	Delete(ctx context.Context, id int64) error
}

type CustomerStore interface {
	GetByUserID(ctx context.Context, userID string) (*customer.Customer, error)
}

// ReminderScheduler queues the reminder email for an itinerary.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, it *itinerary.Itinerary) error
}

type ItineraryService struct {
	logger      *zerolog.Logger
	itineraries ItineraryStore
	customers   CustomerStore
	reminders   ReminderScheduler
}

// NewItineraryService wires the stores. reminders may be nil.
func NewItineraryService(
	logger *zerolog.Logger,
	itineraries ItineraryStore,
	customers CustomerStore,
	reminders ReminderScheduler,
) *ItineraryService {
	return &ItineraryService{
		logger:      logger,
		itineraries: itineraries,
		customers:   customers,
		reminders:   reminders,
	}
}

func (s *ItineraryService) Get(ctx context.Context, id int64) (*itinerary.Itinerary, error) {
	return s.itineraries.GetByID(ctx, id)
}

func (s *ItineraryService) List(ctx context.Context, filter itinerary.Filter) ([]itinerary.Itinerary, error) {
	return s.itineraries.List(ctx, filter)
}

// Create books rideID at start for the customer behind userID.
func (s *ItineraryService) Create(ctx context.Context, userID string, start time.Time, rideID int64) (*itinerary.Itinerary, error) {
	c, err := s.customers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer for caller: %w", err)
	}

	created, err := s.itineraries.Insert(ctx, &itinerary.Itinerary{
		StartTime:  start,
		CustomerID: c.ID,
		Attraction: park.Attraction{ID: rideID},
	})
	if err != nil {
		return nil, err
	}

	s.scheduleReminder(ctx, created)

	return created, nil
}

// Reschedule moves an existing item to start. Only starttime changes.
func (s *ItineraryService) Reschedule(ctx context.Context, id int64, start time.Time) error {
	it, err := s.itineraries.GetByID(ctx, id)
	if err != nil {
		return err
	}

	it.StartTime = start

	saved, err := s.itineraries.Save(ctx, it)
	if err != nil {
		return err
	}

	s.scheduleReminder(ctx, saved)

	return nil
}

func (s *ItineraryService) Delete(ctx context.Context, id int64) error {
	return s.itineraries.Delete(ctx, id)
}

// scheduleReminder never fails the request; a lost reminder is only logged.
func (s *ItineraryService) scheduleReminder(ctx context.Context, it *itinerary.Itinerary) {
	if s.reminders == nil {
		return
	}
	if err := s.reminders.ScheduleReminder(ctx, it); err != nil {
		s.logger.Warn().
			Err(err).
			Int64("itinerary_id", it.ID).
			Msg("failed to schedule itinerary reminder")
	}
}
