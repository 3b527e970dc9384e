package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/kennywood-api/internal/errs"
	"github.com/deppfellow/kennywood-api/internal/middleware"
	"github.com/deppfellow/kennywood-api/internal/model/itinerary"
	"github.com/deppfellow/kennywood-api/internal/server"
	"github.com/deppfellow/kennywood-api/internal/service"
)

// NotFoundMessage is the body text for a missing itinerary.
const NotFoundMessage = "Itinerary matching query does not exist."

type ItineraryHandler struct {
	Handler
	itineraries *service.ItineraryService
}

func NewItineraryHandler(s *server.Server, itineraries *service.ItineraryService) *ItineraryHandler {
	return &ItineraryHandler{
		Handler:     NewHandler(s),
		itineraries: itineraries,
	}
}

func serializer(c echo.Context) itinerary.Serializer {
	return itinerary.NewSerializer(c.Scheme() + "://" + c.Request().Host)
}

func (h *ItineraryHandler) Retrieve(c echo.Context, req *itinerary.GetItineraryRequest) (itinerary.Response, error) {
	it, err := h.itineraries.Get(c.Request().Context(), req.ID)
	if err != nil {
		return itinerary.Response{}, err
	}
	return serializer(c).One(it), nil
}

// RetrieveError answers a failed Retrieve in plain text rather than the JSON
// error envelope the rest of the API uses. Anything but a missing item,
// including an id that is not a number, is a 500.
func (h *ItineraryHandler) RetrieveError(c echo.Context, err error) error {
	if errors.Is(err, itinerary.ErrNotFound) {
		return c.String(http.StatusNotFound, NotFoundMessage)
	}
	return c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (h *ItineraryHandler) List(c echo.Context, req *itinerary.ListItinerariesRequest) ([]itinerary.Response, error) {
	items, err := h.itineraries.List(c.Request().Context(), req.Filter())
	if err != nil {
		return nil, err
	}
	return serializer(c).Many(items), nil
}

// Create books an attraction for the authenticated caller.
func (h *ItineraryHandler) Create(c echo.Context, req *itinerary.CreateItineraryRequest) (itinerary.Response, error) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return itinerary.Response{}, errs.NewUnauthorizedError("Unauthorized", false)
	}

	it, err := h.itineraries.Create(c.Request().Context(), userID, req.Start(), req.RideID)
	if err != nil {
		return itinerary.Response{}, err
	}
	return serializer(c).One(it), nil
}

// Update changes starttime. Failures, a missing id included, are left to the
// global error handler.
func (h *ItineraryHandler) Update(c echo.Context, req *itinerary.UpdateItineraryRequest) error {
	return h.itineraries.Reschedule(c.Request().Context(), req.ID, req.Start())
}

func (h *ItineraryHandler) Destroy(c echo.Context, req *itinerary.DeleteItineraryRequest) error {
	return h.itineraries.Delete(c.Request().Context(), req.ID)
}

// DestroyError answers a failed Destroy with a {"message": ...} body: 404 for
// a missing item, 500 for everything else, a malformed id included.
func (h *ItineraryHandler) DestroyError(c echo.Context, err error) error {
	if errors.Is(err, itinerary.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": NotFoundMessage})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"message": http.StatusText(http.StatusInternalServerError),
	})
}
