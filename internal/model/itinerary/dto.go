package itinerary

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/deppfellow/kennywood-api/internal/validation"
)

// TimeLayout is how starttime is rendered. It is also the preferred input form.
const TimeLayout = "2006-01-02T15:04:05"

var inputLayouts = []string{
	time.RFC3339,
	TimeLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseStartTime accepts any of the supported layouts. Values carrying a zone
// offset are converted to UTC, everything else is taken as UTC wall time.
func ParseStartTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid starttime %q", s)
}

func parseStartTimeField(raw string) (time.Time, error) {
	t, err := ParseStartTime(raw)
	if err != nil {
		return time.Time{}, validation.CustomValidationErrors{{
			Field:   "starttime",
			Message: "must be a date-time such as 2023-06-01T10:00:00",
		}}
	}
	return t, nil
}

// ------------------------------------------------------------

// GetItineraryRequest takes its id from the path only. Ids that cannot exist,
// such as 0, are left for the store to report as not found.
type GetItineraryRequest struct {
	ID int64 `param:"id" json:"-"`
}

func (r *GetItineraryRequest) Validate() error {
	return validation.Struct(r)
}

// ------------------------------------------------------------

// ListItinerariesRequest carries the optional customer filter. An empty
// value is treated the same as an absent one.
type ListItinerariesRequest struct {
	Customer string `query:"customer" validate:"omitempty,number"`
}

func (r *ListItinerariesRequest) Validate() error {
	return validation.Struct(r)
}

// Filter converts the query into a store filter. Validate must have passed.
func (r *ListItinerariesRequest) Filter() Filter {
	if r.Customer == "" {
		return Filter{}
	}
	id, err := strconv.ParseInt(r.Customer, 10, 64)
	if err != nil {
		// "number" admits digits only, so this is an out of range value that
		// no customer can have.
		id = -1
	}
	return Filter{CustomerID: &id}
}

// ------------------------------------------------------------

// CreateItineraryRequest is the POST body. The customer is never read from
// it; it is always the authenticated caller.
type CreateItineraryRequest struct {
	StartTime string `json:"starttime" validate:"required"`
	RideID    int64  `json:"ride_id" validate:"required,gt=0"`

	start time.Time
}

func (r *CreateItineraryRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	t, err := parseStartTimeField(r.StartTime)
	if err != nil {
		return err
	}
	r.start = t
	return nil
}

// Start is the parsed starttime, set by Validate.
func (r *CreateItineraryRequest) Start() time.Time {
	return r.start
}

// ------------------------------------------------------------

type UpdateItineraryRequest struct {
	ID        int64  `param:"id" json:"-" validate:"required,gt=0"`
	StartTime string `json:"starttime" validate:"required"`

	start time.Time
}

func (r *UpdateItineraryRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	t, err := parseStartTimeField(r.StartTime)
	if err != nil {
		return err
	}
	r.start = t
	return nil
}

func (r *UpdateItineraryRequest) Start() time.Time {
	return r.start
}

// ------------------------------------------------------------

type DeleteItineraryRequest struct {
	ID int64 `param:"id" json:"-"`
}

func (r *DeleteItineraryRequest) Validate() error {
	return validation.Struct(r)
}
