package gmao

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acsgmao/mcp/internal/domain"
)

// DefaultPriority is assigned when the GMAO priority label is not in the
// table. Unknown labels must map somewhere rather than fail the webhook.
const DefaultPriority = 2

// priorityTable translates GMAO priority labels (case-insensitive) to the
// internal ascending scale: higher means more urgent.
var priorityTable = map[string]int{
	"low":      1,
	"medium":   2,
	"high":     3,
	"critical": 4,
}

// MapPriority returns the internal priority for a GMAO label.
func MapPriority(label string) int {
	if p, ok := priorityTable[strings.ToLower(label)]; ok {
		return p
	}
	return DefaultPriority
}

// MapIncident maps a validated GMAO payload to the internal IncidentReport.
// Title and description are concatenated into one description field, and any
// supplemental link or metadata is appended as trailing annotated text.
func MapIncident(p *Payload) *domain.IncidentReport {
	var b strings.Builder
	b.WriteString(p.Title)
	if p.Description != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Description)
	}
	b.WriteString("\n\nGMAO Status: ")
	b.WriteString(p.Status)

	if p.ImageURL != "" {
		fmt.Fprintf(&b, "\nImage: %s", p.ImageURL)
	}
	if p.GmaoLink != "" {
		fmt.Fprintf(&b, "\nGMAO Link: %s", p.GmaoLink)
	}
	if len(p.AdditionalData) > 0 {
		if extra, err := json.Marshal(p.AdditionalData); err == nil {
			fmt.Fprintf(&b, "\nAdditional Data: %s", extra)
		}
	}

	affected := p.AffectedServices
	if affected == nil {
		affected = []string{}
	}

	return &domain.IncidentReport{
		IncidentID:      p.ExternalIncidentID,
		Timestamp:       p.IncidentCreatedAt,
		Description:     b.String(),
		Priority:        MapPriority(p.Priority),
		AffectedSystems: affected,
		Reporter:        p.ReportedBy,
	}
}
