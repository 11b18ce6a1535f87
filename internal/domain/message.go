package domain

import "encoding/json"

// MessageRequest is a unit of work to route to agents by capability.
type MessageRequest struct {
	Content          map[string]interface{} `json:"content"`
	TargetCapability string                 `json:"target_capability"`
	SourceAgentID    string                 `json:"source_agent_id,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// AgentDeliveryPayload is the body posted to each selected agent's /process endpoint.
type AgentDeliveryPayload struct {
	Content       map[string]interface{} `json:"content"`
	Metadata      map[string]interface{} `json:"metadata"`
	SourceAgentID string                 `json:"source_agent_id,omitempty"`
}

// OutcomeStatus classifies a per-agent delivery outcome.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeError   OutcomeStatus = "error"
)

// AgentOutcome is the per-agent result of one dispatch. Exactly one of
// ResponseBody (success) or Error (failure) is populated.
type AgentOutcome struct {
	AgentID      string          `json:"agent_id"`
	Status       OutcomeStatus   `json:"status"`
	StatusCode   int             `json:"status_code,omitempty"`
	ResponseBody json.RawMessage `json:"response_body,omitempty"`
	Error        string          `json:"error,omitempty"`

	// Transient marks a failure outcome as retryable (timeout, transport
	// failure, 5xx, 429). Internal to the retry policy, never serialized.
	Transient bool `json:"-"`
}

// MessageResponse is returned to the caller of POST /message.
type MessageResponse struct {
	MessageID string         `json:"message_id"`
	Status    string         `json:"status"`
	Responses []AgentOutcome `json:"responses"`
}
