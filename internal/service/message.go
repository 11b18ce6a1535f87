package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/acsgmao/mcp/internal/domain"
	"github.com/acsgmao/mcp/policy"
)

// ErrBlocked signals that the admission policy rejected the dispatch.
var ErrBlocked = errors.New("dispatch blocked by policy")

// ProcessMessage routes one message to all active agents matching its target
// capability and returns the aggregated outcomes. origin is "api" for
// external callers and "webhook" for internal forwarding.
func (s *Service) ProcessMessage(ctx context.Context, req *domain.MessageRequest, origin string) (*domain.MessageResponse, error) {
	decision, err := s.policy.Evaluate(ctx, policy.Input{
		TargetCapability: req.TargetCapability,
		SourceAgentID:    req.SourceAgentID,
		Origin:           origin,
	})
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}
	if decision == "block" {
		return nil, fmt.Errorf("%w: capability %q", ErrBlocked, req.TargetCapability)
	}

	messageID := "msg_" + uuid.New().String()[:8]
	outcomes, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	s.recordDispatch(ctx, messageID, req, outcomes)

	return &domain.MessageResponse{
		MessageID: messageID,
		Status:    "processed",
		Responses: outcomes,
	}, nil
}

// recordDispatch writes the dispatch audit row. Audit failures are logged,
// never surfaced: the outcome list is the source of truth for the caller.
func (s *Service) recordDispatch(ctx context.Context, messageID string, req *domain.MessageRequest, outcomes []domain.AgentOutcome) {
	marshalled, err := json.Marshal(outcomes)
	if err != nil {
		log.Printf("ERROR: failed to marshal outcomes for audit: %v", err)
		return
	}
	rec := &domain.DispatchRecord{
		MessageID:     messageID,
		Capability:    req.TargetCapability,
		SourceAgentID: req.SourceAgentID,
		Outcomes:      marshalled,
		CreatedAt:     time.Now(),
	}
	if err := s.store.CreateDispatch(ctx, rec); err != nil {
		log.Printf("ERROR: failed to record dispatch %s: %v", messageID, err)
	}
}
