package job

import (
	"time"

	"github.com/deppfellow/kennywood-api/internal/model/itinerary"
	"github.com/deppfellow/kennywood-api/internal/model/park"
)

func newVisit(customerID, attractionID int64) *itinerary.Itinerary {
	return &itinerary.Itinerary{
		StartTime:  visit,
		CustomerID: customerID,
		Attraction: park.Attraction{ID: attractionID},
	}
}

func withStart(it *itinerary.Itinerary, start time.Time) *itinerary.Itinerary {
	cp := *it
	cp.StartTime = start
	return &cp
}
