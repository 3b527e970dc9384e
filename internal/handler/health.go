package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/kennywood-api/internal/middleware"
	"github.com/deppfellow/kennywood-api/internal/server"
)

// Pinger checks one dependency.
type Pinger func(ctx context.Context) error

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
	pingers map[string]Pinger
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	pingers := map[string]Pinger{}
	if s.DB != nil {
		pingers["database"] = s.DB.Pool.Ping
	}
	if s.Redis != nil {
		pingers["redis"] = func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}
	}

	return &HealthHandler{
		Handler: NewHandler(s),
		pingers: pingers,
	}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth pings every configured dependency. Any failure turns the
// response into a 503.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config.Observability.HealthChecks

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      map[string]checkResult{},
	}

	if cfg.Enabled {
		for _, name := range cfg.Checks {
			result := h.check(c.Request().Context(), name, cfg.Timeout)
			response.Checks[name] = result

			if result.Status != "healthy" {
				response.Status = "unhealthy"
				logger.Error().
					Str("check", name).
					Str("error", result.Error).
					Str("response_time", result.ResponseTime).
					Msg("health check failed")
				h.recordFailure(name, result)
			}
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Str("status", response.Status).
		Msg("health check completed")

	return c.JSON(status, response)
}

func (h *HealthHandler) check(ctx context.Context, name string, timeout time.Duration) checkResult {
	ping, ok := h.pingers[name]
	if !ok {
		return checkResult{Status: "unhealthy", ResponseTime: "0s", Error: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	checkStart := time.Now()
	err := ping(ctx)
	result := checkResult{Status: "healthy", ResponseTime: time.Since(checkStart).String()}
	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
	}
	return result
}

func (h *HealthHandler) recordFailure(name string, result checkResult) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":    name,
		"operation":     "health_check",
		"error_type":    name + "_unhealthy",
		"response_time": result.ResponseTime,
		"error_message": result.Error,
	})
}
