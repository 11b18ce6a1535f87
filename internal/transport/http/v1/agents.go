package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acsgmao/mcp/internal/domain"
	"github.com/acsgmao/mcp/internal/registry"
)

// AgentRegisterRequest is the request to register an agent.
type AgentRegisterRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Endpoint     string   `json:"endpoint"`
	Capabilities []string `json:"capabilities"`
}

// AgentRegisterResponse acknowledges a registration.
type AgentRegisterResponse struct {
	AgentID string `json:"agent_id"`
	Status  string `json:"status"`
}

// HeartbeatRequest optionally overwrites the agent's status.
type HeartbeatRequest struct {
	Status string `json:"status,omitempty"`
}

// RegisterAgent registers a new agent.
// POST /agents/register
func (h *Handler) RegisterAgent(c echo.Context) error {
	var req AgentRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if req.Endpoint == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "endpoint is required"})
	}

	agent, err := h.service.Registry().Register(req.Name, req.Description, req.Endpoint, req.Capabilities)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidEndpoint) || errors.Is(err, registry.ErrNoCapabilities) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to register agent"})
	}

	return c.JSON(http.StatusCreated, AgentRegisterResponse{
		AgentID: agent.AgentID,
		Status:  "registered",
	})
}

// ListAgents lists all registered agents.
// GET /agents
func (h *Handler) ListAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"agents": h.service.Registry().List(),
	})
}

// GetAgent gets a specific agent by ID.
// GET /agents/:agent_id
func (h *Handler) GetAgent(c echo.Context) error {
	agentID := c.Param("agent_id")

	agent, err := h.service.Registry().Get(agentID)
	if err != nil {
		if errors.Is(err, registry.ErrAgentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "agent not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get agent"})
	}

	return c.JSON(http.StatusOK, agent)
}

// Heartbeat updates an agent's last_heartbeat, and its status when supplied.
// PUT /agents/:agent_id/heartbeat
func (h *Handler) Heartbeat(c echo.Context) error {
	agentID := c.Param("agent_id")

	var req HeartbeatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	err := h.service.Registry().Heartbeat(agentID, domain.AgentStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrAgentNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "agent not found"})
		case errors.Is(err, registry.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to record heartbeat"})
		}
	}

	return c.NoContent(http.StatusNoContent)
}
