// Package testutil provides in-memory stores that behave like the pgx
// repositories, down to the errors they return.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/deppfellow/kennywood-api/internal/model/customer"
	"github.com/deppfellow/kennywood-api/internal/model/itinerary"
	"github.com/deppfellow/kennywood-api/internal/model/park"
	"github.com/deppfellow/kennywood-api/internal/sqlerr"
)

// Memory is a tiny park database. Itineraries and Customers share its data.
type Memory struct {
	mu          sync.Mutex
	nextID      int64
	itineraries map[int64]itinerary.Itinerary
	attractions map[int64]park.Attraction
	customers   map[int64]customer.Customer

	// FailWith, when set, is returned by every store call.
	FailWith error

	Itineraries *Itineraries
	Customers   *Customers
}

func NewMemory() *Memory {
	m := &Memory{
		itineraries: map[int64]itinerary.Itinerary{},
		attractions: map[int64]park.Attraction{},
		customers:   map[int64]customer.Customer{},
	}
	m.Itineraries = &Itineraries{m: m}
	m.Customers = &Customers{m: m}
	return m
}

// NewPark returns a Memory seeded with one area, attraction 5 and
// customer 42 (user id "user_42").
func NewPark() *Memory {
	m := NewMemory()
	area := park.Area{ID: 2, Name: "Lost Kennywood", Theme: "Ghosts"}
	m.AddAttraction(park.Attraction{ID: 5, Name: "Phantom's Revenge", Area: area})
	m.AddAttraction(park.Attraction{ID: 6, Name: "Thunderbolt", Area: area})
	m.AddCustomer(customer.Customer{ID: 42, UserID: "user_42", Email: "dana@example.com", FirstName: "Dana"})
	m.AddCustomer(customer.Customer{ID: 43, UserID: "user_43", Email: "sam@example.com", FirstName: "Sam"})
	return m
}

func (m *Memory) AddAttraction(a park.Attraction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attractions[a.ID] = a
}

func (m *Memory) AddCustomer(c customer.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
}

// Len reports how many itineraries are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.itineraries)
}

func fkViolation(column string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23503",
		Message:        "insert or update on table \"itinerary\" violates foreign key constraint",
		TableName:      "itinerary",
		ConstraintName: "itinerary_" + column + "_fkey",
	}
}

// ------------------------------------------------------------

type Itineraries struct {
	m *Memory
}

func (s *Itineraries) GetByID(_ context.Context, id int64) (*itinerary.Itinerary, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if s.m.FailWith != nil {
		return nil, s.m.FailWith
	}
	it, ok := s.m.itineraries[id]
	if !ok {
		return nil, sqlerr.NotFound("itinerary", id, itinerary.ErrNotFound)
	}
	return &it, nil
}

func (s *Itineraries) List(_ context.Context, filter itinerary.Filter) ([]itinerary.Itinerary, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if s.m.FailWith != nil {
		return nil, s.m.FailWith
	}

	var out []itinerary.Itinerary
	for _, it := range s.m.itineraries {
		if filter.CustomerID != nil && it.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Itineraries) Insert(_ context.Context, it *itinerary.Itinerary) (*itinerary.Itinerary, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if s.m.FailWith != nil {
		return nil, s.m.FailWith
	}
	if _, ok := s.m.customers[it.CustomerID]; !ok {
		return nil, fkViolation("customer_id")
	}
	attraction, ok := s.m.attractions[it.Attraction.ID]
	if !ok {
		return nil, fkViolation("attraction_id")
	}

	s.m.nextID++
	now := time.Now().UTC()
	created := itinerary.Itinerary{
		ID:         s.m.nextID,
		StartTime:  it.StartTime.UTC(),
		CustomerID: it.CustomerID,
		Attraction: attraction,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.m.itineraries[created.ID] = created
	return &created, nil
}

func (s *Itineraries) Save(_ context.Context, it *itinerary.Itinerary) (*itinerary.Itinerary, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if s.m.FailWith != nil {
		return nil, s.m.FailWith
	}
	existing, ok := s.m.itineraries[it.ID]
	if !ok {
		return nil, sqlerr.NotFound("itinerary", it.ID, itinerary.ErrNotFound)
	}

	existing.StartTime = it.StartTime.UTC()
	existing.UpdatedAt = time.Now().UTC()
	s.m.itineraries[it.ID] = existing
	return &existing, nil
}

func (s *Itineraries) Delete(_ context.Context, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if s.m.FailWith != nil {
		return s.m.FailWith
	}
	if _, ok := s.m.itineraries[id]; !ok {
		return sqlerr.NotFound("itinerary", id, itinerary.ErrNotFound)
	}
	delete(s.m.itineraries, id)
	return nil
}

// ------------------------------------------------------------

type Customers struct {
	m *Memory
}

func (s *Customers) GetByUserID(_ context.Context, userID string) (*customer.Customer, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if s.m.FailWith != nil {
		return nil, s.m.FailWith
	}
	for _, c := range s.m.customers {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, sqlerr.NotFound("customer", userID, customer.ErrNotFound)
}

func (s *Customers) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if s.m.FailWith != nil {
		return nil, s.m.FailWith
	}
	c, ok := s.m.customers[id]
	if !ok {
		return nil, sqlerr.NotFound("customer", id, customer.ErrNotFound)
	}
	return &c, nil
}

// ------------------------------------------------------------

// Reminders records every itinerary it is asked to schedule.
type Reminders struct {
	mu        sync.Mutex
	Scheduled []itinerary.Itinerary
	FailWith  error
}

func (r *Reminders) ScheduleReminder(_ context.Context, it *itinerary.Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.Scheduled = append(r.Scheduled, *it)
	return nil
}

// NopLogger returns a logger that discards everything.
func NopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
