package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/kennywood-api/internal/handler"
)

func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	r.Static("/static", handler.StaticDir)
}
