package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/acsgmao/mcp/internal/domain"
)

// AcceptIncident records an accepted webhook incident and schedules its
// asynchronous delivery to the analysis capability. It returns the tracking
// id immediately; the caller acknowledges before any forwarding happens.
func (s *Service) AcceptIncident(ctx context.Context, report *domain.IncidentReport) string {
	trackingID := uuid.New().String()
	now := time.Now()
	rec := &domain.IncidentRecord{
		TrackingID: trackingID,
		IncidentID: report.IncidentID,
		Priority:   report.Priority,
		Status:     domain.IncidentStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateIncident(ctx, rec); err != nil {
		// The audit trail is observability, not the source of truth; the
		// incident is still forwarded.
		log.Printf("ERROR: failed to record incident %s (tracking %s): %v", report.IncidentID, trackingID, err)
	}

	s.forwards.Add(1)
	go func() {
		defer s.forwards.Done()
		// Detached from the request context: the webhook caller has
		// already been acknowledged.
		s.forwardIncident(context.Background(), trackingID, report)
	}()

	return trackingID
}

// forwardIncident delivers the report to the analysis capability with a
// bounded retry policy. Outcomes are recorded in the audit store and, on
// success, posted to the external callback. Errors here never reach the
// original webhook caller.
func (s *Service) forwardIncident(ctx context.Context, trackingID string, report *domain.IncidentReport) {
	content, err := reportAsContent(report)
	if err != nil {
		log.Printf("ERROR: failed to encode incident %s for forwarding: %v", report.IncidentID, err)
		s.markIncident(ctx, trackingID, domain.IncidentStatusFailed, 0, err.Error())
		return
	}

	msg := &domain.MessageRequest{
		Content:          content,
		TargetCapability: s.cfg.AnalysisCapability,
		Metadata: map[string]interface{}{
			"tracking_id": trackingID,
			"source":      "gmao_webhook",
		},
	}

	backoff := s.cfg.ForwardBackoff
	maxAttempts := s.cfg.ForwardMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastError string
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcomes, err := s.dispatcher.DispatchWithTimeout(ctx, msg, s.cfg.ForwardTimeout)
		if err != nil {
			lastError = err.Error()
			log.Printf("ERROR: forward attempt %d/%d for incident %s failed: %v", attempt, maxAttempts, report.IncidentID, err)
		} else if success := firstSuccess(outcomes); success != nil {
			log.Printf("Successfully forwarded incident %s (tracking %s) to agent %s", report.IncidentID, trackingID, success.AgentID)
			s.markIncident(ctx, trackingID, domain.IncidentStatusForwarded, attempt, "")
			s.notifyCallback(ctx, trackingID, report.IncidentID, success)
			return
		} else {
			lastError = summarizeFailures(outcomes)
			if len(outcomes) > 0 && !allTransient(outcomes) {
				// A downstream agent rejected the report outright;
				// retrying would only duplicate the rejection.
				log.Printf("ERROR: incident %s rejected permanently by agent(s): %s", report.IncidentID, lastError)
				s.markIncident(ctx, trackingID, domain.IncidentStatusFailed, attempt, lastError)
				return
			}
			log.Printf("WARN: forward attempt %d/%d for incident %s: %s", attempt, maxAttempts, report.IncidentID, lastError)
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			s.markIncident(ctx, trackingID, domain.IncidentStatusFailed, attempt, ctx.Err().Error())
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	log.Printf("ERROR: giving up on incident %s (tracking %s) after %d attempts: %s", report.IncidentID, trackingID, maxAttempts, lastError)
	s.markIncident(ctx, trackingID, domain.IncidentStatusFailed, maxAttempts, lastError)
}

// notifyCallback posts the successful analysis to the configured callback
// URL. The notifier applies its own retry policy; exhaustion is terminal and
// only logged.
func (s *Service) notifyCallback(ctx context.Context, trackingID, incidentID string, outcome *domain.AgentOutcome) {
	if !s.notifier.Enabled() {
		return
	}
	payload := &domain.CallbackPayload{
		TrackingID: trackingID,
		IncidentID: incidentID,
		Status:     "completed",
		AgentID:    outcome.AgentID,
		Analysis:   outcome.ResponseBody,
	}
	if err := s.notifier.Notify(ctx, payload); err != nil {
		log.Printf("ERROR: callback for incident %s (tracking %s) failed terminally: %v", incidentID, trackingID, err)
	}
}

func (s *Service) markIncident(ctx context.Context, trackingID string, status domain.IncidentStatus, attempts int, lastError string) {
	if err := s.store.UpdateIncidentStatus(ctx, trackingID, status, attempts, lastError); err != nil {
		log.Printf("ERROR: failed to update incident %s to %s: %v", trackingID, status, err)
	}
}

// reportAsContent converts the typed report into the opaque content mapping
// forwarded to agents.
func reportAsContent(report *domain.IncidentReport) (map[string]interface{}, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	var content map[string]interface{}
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, err
	}
	return content, nil
}

func firstSuccess(outcomes []domain.AgentOutcome) *domain.AgentOutcome {
	for i := range outcomes {
		if outcomes[i].Status == domain.OutcomeSuccess {
			return &outcomes[i]
		}
	}
	return nil
}

func allTransient(outcomes []domain.AgentOutcome) bool {
	for _, o := range outcomes {
		if o.Status == domain.OutcomeError && !o.Transient {
			return false
		}
	}
	return true
}

func summarizeFailures(outcomes []domain.AgentOutcome) string {
	if len(outcomes) == 0 {
		return "no active agents with analysis capability"
	}
	// First error is representative; the full list lives in the dispatch log.
	for _, o := range outcomes {
		if o.Status == domain.OutcomeError {
			return o.Error
		}
	}
	return "delivery failed"
}
