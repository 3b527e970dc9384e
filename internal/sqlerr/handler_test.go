package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/kennywood-api/internal/errs"
)

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestHandleError_ForeignKey(t *testing.T) {
	err := fmt.Errorf("failed to insert itinerary: %w", &pgconn.PgError{
		Code:           "23503",
		TableName:      "itinerary",
		ConstraintName: "itinerary_attraction_id_fkey",
	})

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "ATTRACTION_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "The referenced Attraction does not exist", httpErr.Message)
}

func TestHandleError_UniqueViolation(t *testing.T) {
	err := &pgconn.PgError{
		Code:           "23505",
		TableName:      "park_area",
		ConstraintName: "park_area_name_key",
	}

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "PARK_AREA_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "A Park Area with this Name already exists", httpErr.Message)
}

func TestHandleError_NotNull(t *testing.T) {
	err := &pgconn.PgError{Code: "23502", TableName: "itinerary", ColumnName: "starttime"}

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "The Starttime is required", httpErr.Message)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "starttime", httpErr.Errors[0].Field)
}

func TestHandleError_OtherDriverErrorHidesDetails(t *testing.T) {
	err := &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"}

	httpErr := asHTTPError(t, HandleError(err))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.NotContains(t, httpErr.Message, "statement")
}

func TestHandleError_NoRows(t *testing.T) {
	sentinel := errors.New("itinerary matching query does not exist")
	err := NotFound("itinerary", int64(7), sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	httpErr := asHTTPError(t, HandleError(fmt.Errorf("update: %w", err)))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Itinerary not found", httpErr.Message)

	httpErr = asHTTPError(t, HandleError(pgx.ErrNoRows))
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleError_PassesHTTPErrorsThrough(t *testing.T) {
	in := errs.NewUnauthorizedError("Unauthorized", false)
	assert.Same(t, in, HandleError(in))
}

func TestHandleError_Unknown(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "Park Area", humanizeText("park_area"))
	assert.Equal(t, "Attraction", getEntityName("itinerary", "attraction_id"))
	assert.Equal(t, "Customer", getEntityName("customers", ""))
	assert.Equal(t, "user", extractColumnForUniqueViolation("customer_user_key"))
	assert.Equal(t, "id", extractColumnForUniqueViolation("unique_customer_user_id"))
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, Other, MapCode("XX000"))
	assert.Equal(t, SeverityError, MapSeverity("bogus"))
}

func TestConvertPgError(t *testing.T) {
	src := &pgconn.PgError{Code: "23503", Severity: "ERROR", Message: "fk", TableName: "itinerary"}
	converted := ConvertPgError(src)

	assert.Equal(t, ForeignKeyViolation, converted.Code)
	assert.Equal(t, ForeignKeyViolation, ErrCode(converted))
	assert.ErrorIs(t, converted, src)
	assert.Contains(t, converted.Error(), "SQLSTATE 23503")
}
