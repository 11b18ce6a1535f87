package v1

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acsgmao/mcp/internal/dispatch"
	"github.com/acsgmao/mcp/internal/domain"
	"github.com/acsgmao/mcp/internal/service"
)

// ProcessMessage routes a message to all active agents matching the target
// capability and returns the per-agent outcomes.
// POST /message
func (h *Handler) ProcessMessage(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.TargetCapability == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "target_capability is required"})
	}

	resp, err := h.service.ProcessMessage(ctx, &req, "api")
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrMissingCapability):
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrBlocked):
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: failed to route message: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "failed to route message to agents"})
		}
	}

	return c.JSON(http.StatusOK, resp)
}
