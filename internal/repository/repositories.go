package repository

import (
	"github.com/deppfellow/kennywood-api/internal/server"
)

type Repositories struct {
	Itinerary *ItineraryRepository
	Customer  *CustomerRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Itinerary: NewItineraryRepository(s.DB.Pool),
		Customer:  NewCustomerRepository(s.DB.Pool),
	}
}
