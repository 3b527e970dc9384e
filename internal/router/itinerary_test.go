package router_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/kennywood-api/internal/config"
	"github.com/deppfellow/kennywood-api/internal/errs"
	"github.com/deppfellow/kennywood-api/internal/handler"
	"github.com/deppfellow/kennywood-api/internal/middleware"
	"github.com/deppfellow/kennywood-api/internal/model/itinerary"
	"github.com/deppfellow/kennywood-api/internal/router"
	"github.com/deppfellow/kennywood-api/internal/server"
	"github.com/deppfellow/kennywood-api/internal/service"
	"github.com/deppfellow/kennywood-api/internal/testutil"
)

type api struct {
	t    *testing.T
	e    *echo.Echo
	mem  *testutil.Memory
	auth config.AuthConfig
}

func newAPI(t *testing.T) *api {
	t.Helper()

	cfg := config.Default()
	cfg.Auth = config.AuthConfig{Provider: config.AuthProviderJWT, SecretKey: "test-secret"}
	cfg.Server.RateLimit.RequestsPerSecond = 0

	s := &server.Server{Config: cfg, Logger: testutil.NopLogger()}
	mem := testutil.NewPark()
	svc := service.NewItineraryService(s.Logger, mem.Itineraries, mem.Customers, nil)

	h := &handler.Handlers{
		Health:    handler.NewHealthHandler(s),
		OpenAPI:   handler.NewOpenAPIHandler(s),
		Itinerary: handler.NewItineraryHandler(s, svc),
	}

	return &api{t: t, e: router.NewRouter(s, h), mem: mem, auth: cfg.Auth}
}

// do sends a request as userID. An empty userID sends no token.
func (a *api) do(method, path, body, userID string) *httptest.ResponseRecorder {
	a.t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if userID != "" {
		token, err := middleware.GenerateToken(userID, time.Hour, a.auth)
		require.NoError(a.t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *api) create(userID, body string) itinerary.Response {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/itinerary", body, userID)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[itinerary.Response](a.t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCreateThenRetrieve(t *testing.T) {
	a := newAPI(t)

	created := a.create("user_42", `{"starttime":"2023-06-01T10:00:00","ride_id":5}`)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "http://example.com/itinerary/1", created.URL)
	assert.Equal(t, "2023-06-01T10:00:00", created.StartTime)
	assert.Equal(t, int64(42), created.Customer)
	assert.Equal(t, "http://example.com/attractions/5", created.Attraction.URL)
	assert.Equal(t, "Phantom's Revenge", created.Attraction.Name)
	assert.Equal(t, "http://example.com/parkareas/2", created.Attraction.Area.URL)
	assert.Equal(t, "Ghosts", created.Attraction.Area.Theme)

	rec := a.do(http.MethodGet, "/itinerary/1", "", "user_43")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[itinerary.Response](t, rec))
}

func TestCreate_IgnoresCustomerInBody(t *testing.T) {
	a := newAPI(t)

	created := a.create("user_43", `{"starttime":"2023-06-01T10:00:00","ride_id":6,"customer":42}`)
	assert.Equal(t, int64(43), created.Customer)
}

func TestCreate_OffsetStartTimeStoredAsUTC(t *testing.T) {
	a := newAPI(t)

	created := a.create("user_42", `{"starttime":"2023-06-01T12:00:00+02:00","ride_id":5}`)
	assert.Equal(t, "2023-06-01T10:00:00", created.StartTime)
}

func TestCreate_MissingFields(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/itinerary", `{"starttime":"2023-06-01T10:00:00"}`, "user_42")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errs.HTTPError](t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "ride_id", body.Errors[0].Field)
	assert.Zero(t, a.mem.Len())
}

func TestCreate_BadStartTime(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/itinerary", `{"starttime":"next tuesday","ride_id":5}`, "user_42")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errs.HTTPError](t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "starttime", body.Errors[0].Field)
}

func TestCreate_UnknownAttraction(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/itinerary", `{"starttime":"2023-06-01T10:00:00","ride_id":999}`, "user_42")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errs.HTTPError](t, rec)
	assert.Equal(t, "ATTRACTION_NOT_FOUND", body.Code)
	assert.Equal(t, "The referenced Attraction does not exist", body.Message)
}

func TestCreate_CallerWithoutCustomer(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/itinerary", `{"starttime":"2023-06-01T10:00:00","ride_id":5}`, "user_without_profile")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Customer not found", decode[errs.HTTPError](t, rec).Message)
}

func TestRequiresToken(t *testing.T) {
	a := newAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/itinerary"},
		{http.MethodPost, "/itinerary"},
		{http.MethodGet, "/itinerary/1"},
		{http.MethodPut, "/itinerary/1"},
		{http.MethodDelete, "/itinerary/1"},
	} {
		rec := a.do(tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRetrieve_Missing(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/itinerary/7", "", "user_42")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, echo.MIMETextPlainCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, handler.NotFoundMessage, rec.Body.String())
}

func TestRetrieve_StoreFailure(t *testing.T) {
	a := newAPI(t)
	a.mem.FailWith = errors.New("connection reset")

	rec := a.do(http.MethodGet, "/itinerary/1", "", "user_42")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, echo.MIMETextPlainCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestRetrieve_NonNumericID(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/itinerary/abc", "", "user_42")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, echo.MIMETextPlainCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
}

func TestRetrieve_ZeroIDIsNotFound(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/itinerary/0", "", "user_42")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handler.NotFoundMessage, rec.Body.String())
}

func TestList(t *testing.T) {
	a := newAPI(t)
	a.create("user_42", `{"starttime":"2023-06-01T10:00:00","ride_id":5}`)
	a.create("user_43", `{"starttime":"2023-06-01T11:00:00","ride_id":6}`)
	a.create("user_42", `{"starttime":"2023-06-01T12:00:00","ride_id":6}`)

	rec := a.do(http.MethodGet, "/itinerary", "", "user_42")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]itinerary.Response](t, rec), 3)

	rec = a.do(http.MethodGet, "/itinerary?customer=42", "", "user_43")
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]itinerary.Response](t, rec)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(1), mine[0].ID)
	assert.Equal(t, int64(3), mine[1].ID)

	rec = a.do(http.MethodGet, "/itinerary?customer=", "", "user_42")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]itinerary.Response](t, rec), 3)
}

func TestList_EmptyIsArray(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/itinerary?customer=77", "", "user_42")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestList_BadCustomer(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/itinerary?customer=abc", "", "user_42")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errs.HTTPError](t, rec)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "customer", body.Errors[0].Field)
}

func TestUpdate(t *testing.T) {
	a := newAPI(t)
	created := a.create("user_42", `{"starttime":"2023-06-01T10:00:00","ride_id":5}`)

	rec := a.do(http.MethodPut, "/itinerary/1", `{"starttime":"2023-06-01T15:30:00","ride_id":6}`, "user_42")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	got := decode[itinerary.Response](t, a.do(http.MethodGet, "/itinerary/1", "", "user_42"))
	assert.Equal(t, "2023-06-01T15:30:00", got.StartTime)
	assert.Equal(t, created.Attraction, got.Attraction)
	assert.Equal(t, created.Customer, got.Customer)
}

func TestUpdate_BodyCannotRetargetItem(t *testing.T) {
	a := newAPI(t)
	a.create("user_42", `{"starttime":"2023-06-01T10:00:00","ride_id":5}`)
	a.create("user_42", `{"starttime":"2023-06-01T11:00:00","ride_id":6}`)

	rec := a.do(http.MethodPut, "/itinerary/1", `{"id":2,"starttime":"2030-01-01T00:00:00"}`, "user_42")
	require.Equal(t, http.StatusNoContent, rec.Code)

	first := decode[itinerary.Response](t, a.do(http.MethodGet, "/itinerary/1", "", "user_42"))
	second := decode[itinerary.Response](t, a.do(http.MethodGet, "/itinerary/2", "", "user_42"))
	assert.Equal(t, "2030-01-01T00:00:00", first.StartTime)
	assert.Equal(t, "2023-06-01T11:00:00", second.StartTime)
}

func TestUpdate_Missing(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPut, "/itinerary/9", `{"starttime":"2023-06-01T15:30:00"}`, "user_42")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decode[errs.HTTPError](t, rec)
	assert.Equal(t, "Itinerary not found", body.Message)
	assert.Equal(t, http.StatusNotFound, body.Status)
}

func TestUpdate_MissingStartTime(t *testing.T) {
	a := newAPI(t)
	a.create("user_42", `{"starttime":"2023-06-01T10:00:00","ride_id":5}`)

	rec := a.do(http.MethodPut, "/itinerary/1", `{}`, "user_42")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDestroy(t *testing.T) {
	a := newAPI(t)
	a.create("user_42", `{"starttime":"2023-06-01T10:00:00","ride_id":5}`)

	rec := a.do(http.MethodDelete, "/itinerary/1", "", "user_42")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, a.mem.Len())

	rec = a.do(http.MethodGet, "/itinerary/1", "", "user_42")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDestroy_Missing(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodDelete, "/itinerary/1", "", "user_42")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Itinerary matching query does not exist."}`, rec.Body.String())
}

func TestDestroy_BodyCannotRetargetItem(t *testing.T) {
	a := newAPI(t)
	a.create("user_42", `{"starttime":"2023-06-01T10:00:00","ride_id":5}`)
	a.create("user_42", `{"starttime":"2023-06-01T11:00:00","ride_id":6}`)

	rec := a.do(http.MethodDelete, "/itinerary/1", `{"id":2}`, "user_42")
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/itinerary/1", "", "user_42").Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/itinerary/2", "", "user_42").Code)
}

func TestDestroy_ImpossibleIDsAreNotFound(t *testing.T) {
	a := newAPI(t)

	for _, path := range []string{"/itinerary/0", "/itinerary/-3"} {
		rec := a.do(http.MethodDelete, path, "", "user_42")
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"message":"Itinerary matching query does not exist."}`, rec.Body.String(), path)
	}
}

func TestDestroy_NonNumericID(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodDelete, "/itinerary/abc", "", "user_42")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
}

func TestDestroy_StoreFailure(t *testing.T) {
	a := newAPI(t)
	a.mem.FailWith = errors.New("connection reset")

	rec := a.do(http.MethodDelete, "/itinerary/1", "", "user_42")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/nowhere", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode[errs.HTTPError](t, rec).Message)
}

func TestRequestIDIsEchoed(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
}
