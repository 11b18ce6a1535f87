// Package http provides the HTTP server for the MCP service.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/acsgmao/mcp/internal/service"
	v1 "github.com/acsgmao/mcp/internal/transport/http/v1"
)

// NewServer creates and configures the MCP HTTP server: the agent registry
// API, message routing, and the GMAO webhook ingress.
func NewServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	handler := v1.NewHandler(svc)
	handler.RegisterRoutes(e)

	return e
}
