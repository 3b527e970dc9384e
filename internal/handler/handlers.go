package handler

import (
	"github.com/deppfellow/kennywood-api/internal/server"
	"github.com/deppfellow/kennywood-api/internal/service"
)

type Handlers struct {
	Health    *HealthHandler
	OpenAPI   *OpenAPIHandler
	Itinerary *ItineraryHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(s),
		OpenAPI:   NewOpenAPIHandler(s),
		Itinerary: NewItineraryHandler(s, services.Itinerary),
	}
}
