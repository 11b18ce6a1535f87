// Package dispatch fans messages out to registered agents by capability and
// collects per-agent outcomes.
package dispatch

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/acsgmao/mcp/internal/adapter/agentclient"
	"github.com/acsgmao/mcp/internal/domain"
	"github.com/acsgmao/mcp/internal/registry"
)

// ErrMissingCapability signals a client error: a dispatch request without a
// target capability. Never retried.
var ErrMissingCapability = errors.New("target_capability is required")

// Dispatcher routes messages to all active agents matching a capability.
// It holds no state across dispatches.
type Dispatcher struct {
	registry *registry.Registry
	agents   *agentclient.Client
	timeout  time.Duration
}

// New creates a dispatcher. timeout is the default per-delivery budget.
func New(reg *registry.Registry, agents *agentclient.Client, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		agents:   agents,
		timeout:  timeout,
	}
}

// Dispatch fans msg out with the default per-delivery timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *domain.MessageRequest) ([]domain.AgentOutcome, error) {
	return d.DispatchWithTimeout(ctx, msg, d.timeout)
}

// DispatchWithTimeout delivers msg concurrently to every active agent that
// declares the target capability and returns one outcome per agent, in the
// order the registry selected them. A capability with zero live agents yields
// an empty outcome list, not an error. One agent's failure never affects
// another's outcome, and no outcome is dropped.
//
// Dispatch is not idempotent: retrying a dispatch re-delivers to every
// matching agent, and side effects at the agents may duplicate.
func (d *Dispatcher) DispatchWithTimeout(ctx context.Context, msg *domain.MessageRequest, timeout time.Duration) ([]domain.AgentOutcome, error) {
	if msg.TargetCapability == "" {
		return nil, ErrMissingCapability
	}

	agents := d.registry.FindByCapability(msg.TargetCapability)
	if len(agents) == 0 {
		log.Printf("WARN: no active agents found with capability %q", msg.TargetCapability)
		return []domain.AgentOutcome{}, nil
	}

	payload := &domain.AgentDeliveryPayload{
		Content:       msg.Content,
		Metadata:      msg.Metadata,
		SourceAgentID: msg.SourceAgentID,
	}

	outcomes := make([]domain.AgentOutcome, len(agents))
	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(i int, agent domain.Agent) {
			defer wg.Done()
			outcomes[i] = d.deliver(ctx, &agent, payload, timeout)
		}(i, agent)
	}
	wg.Wait()

	return outcomes, nil
}

// deliver performs one delivery with an independent timeout and maps the
// result into a tagged success/error outcome.
func (d *Dispatcher) deliver(ctx context.Context, agent *domain.Agent, payload *domain.AgentDeliveryPayload, timeout time.Duration) domain.AgentOutcome {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := d.agents.Process(callCtx, agent.Endpoint, payload)
	if err != nil {
		log.Printf("ERROR: delivery to agent %s (%s) failed: %v", agent.Name, agent.AgentID, err)
		return domain.AgentOutcome{
			AgentID:   agent.AgentID,
			Status:    domain.OutcomeError,
			Error:     err.Error(),
			Transient: agentclient.IsRetryable(err),
		}
	}

	return domain.AgentOutcome{
		AgentID:      agent.AgentID,
		Status:       domain.OutcomeSuccess,
		StatusCode:   result.StatusCode,
		ResponseBody: result.Body,
	}
}
