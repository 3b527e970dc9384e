// Package park holds the park layout entities an itinerary points at.
package park

import "errors"

// ErrAttractionNotFound is returned when no attraction has the requested id.
var ErrAttractionNotFound = errors.New("attraction matching query does not exist")

// Area is a themed section of the park.
type Area struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

// Attraction is a ride or show located in an Area.
type Attraction struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Area Area   `json:"area"`
}
