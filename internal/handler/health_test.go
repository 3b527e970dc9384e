package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/kennywood-api/internal/config"
	"github.com/deppfellow/kennywood-api/internal/server"
	"github.com/deppfellow/kennywood-api/internal/testutil"
)

func healthHandler(pingers map[string]Pinger) *HealthHandler {
	cfg := config.Default()
	s := &server.Server{Config: cfg, Logger: testutil.NopLogger()}
	return &HealthHandler{Handler: NewHandler(s), pingers: pingers}
}

func checkHealth(t *testing.T, h *HealthHandler) (int, healthResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)
	require.NoError(t, h.CheckHealth(c))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func ok(context.Context) error { return nil }

func TestCheckHealth_AllHealthy(t *testing.T) {
	status, body := checkHealth(t, healthHandler(map[string]Pinger{"database": ok, "redis": ok}))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "local", body.Environment)
	assert.Len(t, body.Checks, 2)
}

func TestCheckHealth_FailingDependency(t *testing.T) {
	status, body := checkHealth(t, healthHandler(map[string]Pinger{
		"database": ok,
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"].Status)
	assert.Equal(t, "connection refused", body.Checks["redis"].Error)
}

func TestCheckHealth_UnconfiguredDependency(t *testing.T) {
	status, body := checkHealth(t, healthHandler(map[string]Pinger{"database": ok}))

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "not configured", body.Checks["redis"].Error)
}

func TestCheckHealth_PingRespectsTimeout(t *testing.T) {
	h := healthHandler(map[string]Pinger{
		"database": func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		"redis": ok,
	})
	h.server.Config.Observability.HealthChecks.Timeout = 10 * time.Millisecond

	status, body := checkHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, context.DeadlineExceeded.Error(), body.Checks["database"].Error)
}

func TestCheckHealth_Disabled(t *testing.T) {
	h := healthHandler(nil)
	h.server.Config.Observability.HealthChecks.Enabled = false

	status, body := checkHealth(t, h)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body.Checks)
}
