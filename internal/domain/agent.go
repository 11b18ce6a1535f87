// Package domain defines the core domain models for the MCP service.
package domain

import "time"

// AgentStatus represents the liveness status of a registered agent.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
)

// Valid reports whether s is a known agent status.
func (s AgentStatus) Valid() bool {
	return s == AgentStatusActive || s == AgentStatusInactive
}

// Agent represents a registered agent.
type Agent struct {
	AgentID       string      `json:"agent_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Endpoint      string      `json:"endpoint"`
	Capabilities  []string    `json:"capabilities"`
	Status        AgentStatus `json:"status"`
	LastHeartbeat time.Time   `json:"last_heartbeat"`
	CreatedAt     time.Time   `json:"created_at"`
}

// HasCapability reports whether the agent declares the given capability.
func (a *Agent) HasCapability(capability string) bool {
	for _, c := range a.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
