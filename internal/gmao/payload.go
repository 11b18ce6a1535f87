// Package gmao validates inbound GMAO webhook payloads and maps them to the
// internal incident schema.
package gmao

import (
	"errors"
	"fmt"
	"time"
)

// Payload is the external GMAO incident webhook body.
type Payload struct {
	ExternalIncidentID string                 `json:"external_incident_id"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Status             string                 `json:"status"`
	Priority           string                 `json:"priority"`
	IncidentCreatedAt  time.Time              `json:"incident_created_at"`
	AffectedServices   []string               `json:"affected_services,omitempty"`
	ReportedBy         string                 `json:"reported_by_gmao_user_id,omitempty"`
	ImageURL           string                 `json:"image_url,omitempty"`
	GmaoLink           string                 `json:"gmao_link,omitempty"`
	AdditionalData     map[string]interface{} `json:"additional_data,omitempty"`
}

// ErrInvalidPayload wraps all payload validation failures.
var ErrInvalidPayload = errors.New("invalid gmao payload")

// Validate checks the required fields of the external schema.
func (p *Payload) Validate() error {
	switch {
	case p.ExternalIncidentID == "":
		return fmt.Errorf("%w: external_incident_id is required", ErrInvalidPayload)
	case p.Title == "" && p.Description == "":
		return fmt.Errorf("%w: title or description is required", ErrInvalidPayload)
	case p.Status == "":
		return fmt.Errorf("%w: status is required", ErrInvalidPayload)
	case p.Priority == "":
		return fmt.Errorf("%w: priority is required", ErrInvalidPayload)
	case p.IncidentCreatedAt.IsZero():
		return fmt.Errorf("%w: incident_created_at is required", ErrInvalidPayload)
	}
	return nil
}
