// Package v1 provides the HTTP handlers for the MCP API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/acsgmao/mcp/internal/service"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Handler handles HTTP requests.
type Handler struct {
	service        *service.Service
	webhookLimiter *rate.Limiter
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	cfg := svc.Config()
	return &Handler{
		service:        svc,
		webhookLimiter: rate.NewLimiter(rate.Limit(cfg.WebhookRateLimit), cfg.WebhookRateBurst),
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Agent registry API
	e.POST("/agents/register", h.RegisterAgent)
	e.GET("/agents", h.ListAgents)
	e.GET("/agents/:agent_id", h.GetAgent)
	e.PUT("/agents/:agent_id/heartbeat", h.Heartbeat)

	// Message routing
	e.POST("/message", h.ProcessMessage)

	// GMAO webhook ingress and incident tracking
	e.POST("/api/v1/webhooks/gmao/incidents", h.ReceiveGmaoIncident)
	e.GET("/api/v1/incidents/:tracking_id", h.GetIncident)

	e.GET("/health", h.Health)
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "MCP is running",
		"version": Version,
	})
}
