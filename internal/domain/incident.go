package domain

import (
	"encoding/json"
	"time"
)

// IncidentReport is the internal canonical incident schema produced by the
// GMAO webhook ingress. Immutable once constructed.
type IncidentReport struct {
	IncidentID      string    `json:"incident_id"`
	Timestamp       time.Time `json:"timestamp"`
	Description     string    `json:"description"`
	Priority        int       `json:"priority"`
	AffectedSystems []string  `json:"affected_systems"`
	Reporter        string    `json:"reporter,omitempty"`
}

// IncidentStatus tracks the lifecycle of an accepted webhook incident.
type IncidentStatus string

const (
	IncidentStatusQueued    IncidentStatus = "queued"
	IncidentStatusForwarded IncidentStatus = "forwarded"
	IncidentStatusFailed    IncidentStatus = "failed"
)

// IncidentRecord is the audit-store row behind a tracking id.
type IncidentRecord struct {
	TrackingID string         `json:"tracking_id"`
	IncidentID string         `json:"incident_id"`
	Priority   int            `json:"priority"`
	Status     IncidentStatus `json:"status"`
	Attempts   int            `json:"attempts"`
	LastError  string         `json:"last_error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// DispatchRecord is the audit-store row for one completed dispatch.
type DispatchRecord struct {
	MessageID     string          `json:"message_id"`
	Capability    string          `json:"capability"`
	SourceAgentID string          `json:"source_agent_id,omitempty"`
	Outcomes      json.RawMessage `json:"outcomes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CallbackPayload is posted to the external callback URL once an analysis
// completes. Analysis carries the agent's response body verbatim.
type CallbackPayload struct {
	TrackingID string          `json:"tracking_id"`
	IncidentID string          `json:"incident_id"`
	Status     string          `json:"status"`
	AgentID    string          `json:"agent_id"`
	Analysis   json.RawMessage `json:"analysis"`
}
