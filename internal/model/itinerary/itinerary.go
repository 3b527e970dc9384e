// Package itinerary defines itinerary items, the payloads that create and
// change them, and their JSON representation.
package itinerary

import (
	"errors"
	"time"

	"github.com/deppfellow/kennywood-api/internal/model/park"
)

// ErrNotFound is returned by stores when no itinerary has the requested id.
var ErrNotFound = errors.New("itinerary matching query does not exist")

// Itinerary is one scheduled visit by a customer to an attraction.
//
// StartTime has no zone; it is stored as a PostgreSQL TIMESTAMP and always
// handled as UTC wall-clock time.
type Itinerary struct {
	ID         int64
	StartTime  time.Time
	CustomerID int64
	Attraction park.Attraction
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filter narrows List. A nil CustomerID returns every item.
type Filter struct {
	CustomerID *int64
}
