// Package registry keeps the in-memory directory of agents and their
// declared capabilities. It is the only shared mutable state in the MCP
// process and is safe for concurrent use.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acsgmao/mcp/internal/domain"
)

// Errors returned by Registry operations.
var (
	ErrAgentNotFound   = errors.New("agent not found")
	ErrNoCapabilities  = errors.New("at least one capability is required")
	ErrInvalidEndpoint = errors.New("endpoint must be an absolute http(s) URL")
	ErrInvalidStatus   = errors.New("status must be \"active\" or \"inactive\"")
)

// Registry is the agent directory. A single instance is the process-wide
// authority; state is not persisted and resets on restart.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*domain.Agent
	order  []string // agent ids in registration order
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		agents: make(map[string]*domain.Agent),
	}
}

// Register validates and stores a new agent, returning the generated agent id.
func (r *Registry) Register(name, description, endpoint string, capabilities []string) (*domain.Agent, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}
	caps := dedupe(capabilities)
	if len(caps) == 0 {
		return nil, ErrNoCapabilities
	}

	now := time.Now()
	agent := &domain.Agent{
		AgentID:       uuid.New().String(),
		Name:          name,
		Description:   description,
		Endpoint:      endpoint,
		Capabilities:  caps,
		Status:        domain.AgentStatusActive,
		LastHeartbeat: now,
		CreatedAt:     now,
	}

	r.mu.Lock()
	r.agents[agent.AgentID] = agent
	r.order = append(r.order, agent.AgentID)
	r.mu.Unlock()

	out := *agent
	return &out, nil
}

// Get returns a copy of the agent record.
func (r *Registry) Get(agentID string) (*domain.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}
	out := *agent
	out.Capabilities = append([]string(nil), agent.Capabilities...)
	return &out, nil
}

// List returns all agents in registration order.
func (r *Registry) List() []domain.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Agent, 0, len(r.order))
	for _, id := range r.order {
		agent := r.agents[id]
		cp := *agent
		cp.Capabilities = append([]string(nil), agent.Capabilities...)
		out = append(out, cp)
	}
	return out
}

// Heartbeat advances the agent's last_heartbeat. When status is non-empty it
// also overwrites the status, which allows voluntary deactivation and
// reactivation from inactive.
func (r *Registry) Heartbeat(agentID string, status domain.AgentStatus) error {
	if status != "" && !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[agentID]
	if !ok {
		return ErrAgentNotFound
	}
	agent.LastHeartbeat = time.Now()
	if status != "" {
		agent.Status = status
	}
	return nil
}

// Deactivate administratively demotes an agent to inactive.
func (r *Registry) Deactivate(agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[agentID]
	if !ok {
		return ErrAgentNotFound
	}
	agent.Status = domain.AgentStatusInactive
	return nil
}

// FindByCapability returns active agents declaring the capability, in
// registration order.
func (r *Registry) FindByCapability(capability string) []domain.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Agent
	for _, id := range r.order {
		agent := r.agents[id]
		if agent.Status != domain.AgentStatusActive || !agent.HasCapability(capability) {
			continue
		}
		cp := *agent
		cp.Capabilities = append([]string(nil), agent.Capabilities...)
		out = append(out, cp)
	}
	return out
}

// DemoteStale flips agents whose last heartbeat is older than the cutoff to
// inactive and returns how many were demoted. Agents are never deleted; a
// later heartbeat with status "active" reactivates them.
func (r *Registry) DemoteStale(olderThan time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, agent := range r.agents {
		if agent.Status == domain.AgentStatusActive && agent.LastHeartbeat.Before(olderThan) {
			agent.Status = domain.AgentStatusInactive
			n++
		}
	}
	return n
}

// StartJanitor runs TTL-based staleness demotion until ctx is cancelled.
// A ttl of zero disables the janitor entirely.
func (r *Registry) StartJanitor(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.DemoteStale(time.Now().Add(-ttl)); n > 0 {
					log.Printf("WARN: demoted %d stale agent(s) to inactive (ttl %s)", n, ttl)
				}
			}
		}
	}()
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
