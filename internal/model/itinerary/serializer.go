package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/kennywood-api/internal/model/park"
)

// Route prefixes used when building hyperlinks.
const (
	ItineraryPath  = "/itinerary"
	AttractionPath = "/attractions"
	ParkAreaPath   = "/parkareas"
)

type AreaResponse struct {
	ID    int64  `json:"id"`
	URL   string `json:"url"`
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

type AttractionResponse struct {
	ID   int64        `json:"id"`
	URL  string       `json:"url"`
	Name string       `json:"name"`
	Area AreaResponse `json:"area"`
}

// Response is the public representation of an itinerary: a self-link plus the
// attraction and its park area, two levels deep.
type Response struct {
	ID         int64              `json:"id"`
	URL        string             `json:"url"`
	StartTime  string             `json:"starttime"`
	Customer   int64              `json:"customer"`
	Attraction AttractionResponse `json:"attraction"`
}

// Serializer renders itineraries with absolute links rooted at BaseURL
// (scheme and host, e.g. "http://localhost:8080").
type Serializer struct {
	BaseURL string
}

func NewSerializer(baseURL string) Serializer {
	return Serializer{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s Serializer) link(prefix string, id int64) string {
	return fmt.Sprintf("%s%s/%d", s.BaseURL, prefix, id)
}

func (s Serializer) One(it *Itinerary) Response {
	return Response{
		ID:         it.ID,
		URL:        s.link(ItineraryPath, it.ID),
		StartTime:  FormatStartTime(it.StartTime),
		Customer:   it.CustomerID,
		Attraction: s.attraction(it.Attraction),
	}
}

// Many never returns nil so an empty list encodes as [].
func (s Serializer) Many(items []Itinerary) []Response {
	out := make([]Response, 0, len(items))
	for i := range items {
		out = append(out, s.One(&items[i]))
	}
	return out
}

func (s Serializer) attraction(a park.Attraction) AttractionResponse {
	return AttractionResponse{
		ID:   a.ID,
		URL:  s.link(AttractionPath, a.ID),
		Name: a.Name,
		Area: AreaResponse{
			ID:    a.Area.ID,
			URL:   s.link(ParkAreaPath, a.Area.ID),
			Name:  a.Area.Name,
			Theme: a.Area.Theme,
		},
	}
}

func FormatStartTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
