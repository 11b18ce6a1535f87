package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acsgmao/mcp/internal/gmao"
)

// gmaoTokenHeader carries the shared webhook secret.
const gmaoTokenHeader = "X-GMAO-Token"

// WebhookAck is the 202 response body for an accepted incident.
type WebhookAck struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	TrackingID string `json:"tracking_id"`
}

// ReceiveGmaoIncident authenticates, validates and maps an inbound GMAO
// incident, acknowledges it synchronously, and schedules asynchronous
// delivery to the analysis capability.
// POST /api/v1/webhooks/gmao/incidents
func (h *Handler) ReceiveGmaoIncident(c echo.Context) error {
	token := c.Request().Header.Get(gmaoTokenHeader)
	if token == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing API Key"})
	}
	secret := h.service.Config().WebhookAPIKey
	if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Invalid API Key"})
	}

	if !h.webhookLimiter.Allow() {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "webhook rate limit exceeded"})
	}

	var payload gmao.Payload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "malformed payload"})
	}
	if err := payload.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	report := gmao.MapIncident(&payload)
	trackingID := h.service.AcceptIncident(c.Request().Context(), report)

	return c.JSON(http.StatusAccepted, WebhookAck{
		Status:     "success",
		Message:    "Incident received and queued for processing",
		TrackingID: trackingID,
	})
}

// GetIncident returns the tracking record for an accepted incident.
// GET /api/v1/incidents/:tracking_id
func (h *Handler) GetIncident(c echo.Context) error {
	trackingID := c.Param("tracking_id")

	rec, err := h.service.Store().GetIncident(c.Request().Context(), trackingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get incident"})
	}
	if rec == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "incident not found"})
	}

	return c.JSON(http.StatusOK, rec)
}
