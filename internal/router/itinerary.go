package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/kennywood-api/internal/handler"
	"github.com/deppfellow/kennywood-api/internal/middleware"
	"github.com/deppfellow/kennywood-api/internal/model/itinerary"
)

func registerItineraryRoutes(r *echo.Echo, h *handler.Handlers, auth *middleware.AuthMiddleware) {
	RegisterItineraryRoutes(r.Group(itinerary.ItineraryPath, auth.RequireAuth), h.Itinerary)
}

// RegisterItineraryRoutes mounts the itinerary resource on g. Authentication
// is the caller's concern.
func RegisterItineraryRoutes(g *echo.Group, ih *handler.ItineraryHandler) {
	g.GET("", handler.Handle(ih.Handler, ih.List, http.StatusOK, &itinerary.ListItinerariesRequest{}))
	g.POST("", handler.Handle(ih.Handler, ih.Create, http.StatusOK, &itinerary.CreateItineraryRequest{}))

	g.GET("/:id", handler.Handle(ih.Handler, ih.Retrieve, http.StatusOK, &itinerary.GetItineraryRequest{},
		handler.WithErrorWriter(ih.RetrieveError), handler.WithRequestErrors()))
	g.PUT("/:id", handler.HandleNoContent(ih.Handler, ih.Update, http.StatusNoContent, &itinerary.UpdateItineraryRequest{}))
	g.DELETE("/:id", handler.HandleNoContent(ih.Handler, ih.Destroy, http.StatusNoContent, &itinerary.DeleteItineraryRequest{},
		handler.WithErrorWriter(ih.DestroyError), handler.WithRequestErrors()))
}
