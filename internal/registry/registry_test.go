package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/acsgmao/mcp/internal/domain"
)

func TestRegisterGeneratesUniqueIDs(t *testing.T) {
	r := New()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		agent, err := r.Register("agent", "", "http://agent:8003", []string{"incident_analysis"})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if seen[agent.AgentID] {
			t.Fatalf("duplicate agent id: %s", agent.AgentID)
		}
		seen[agent.AgentID] = true
	}
}

func TestRegisterValidation(t *testing.T) {
	r := New()

	if _, err := r.Register("a", "", "not-a-url", []string{"x"}); !errors.Is(err, ErrInvalidEndpoint) {
		t.Fatalf("expected ErrInvalidEndpoint, got %v", err)
	}
	if _, err := r.Register("a", "", "ftp://agent:21", []string{"x"}); !errors.Is(err, ErrInvalidEndpoint) {
		t.Fatalf("expected ErrInvalidEndpoint for non-http scheme, got %v", err)
	}
	if _, err := r.Register("a", "", "http://agent:8003", nil); !errors.Is(err, ErrNoCapabilities) {
		t.Fatalf("expected ErrNoCapabilities, got %v", err)
	}
	if _, err := r.Register("a", "", "http://agent:8003", []string{""}); !errors.Is(err, ErrNoCapabilities) {
		t.Fatalf("expected ErrNoCapabilities for empty strings, got %v", err)
	}
}

func TestRegisterStartsActive(t *testing.T) {
	r := New()

	agent, err := r.Register("a", "desc", "http://agent:8003", []string{"x", "x", "y"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if agent.Status != domain.AgentStatusActive {
		t.Fatalf("expected active, got %s", agent.Status)
	}
	if len(agent.Capabilities) != 2 {
		t.Fatalf("expected deduped capabilities, got %v", agent.Capabilities)
	}
	if agent.LastHeartbeat.IsZero() {
		t.Fatal("last_heartbeat not set on registration")
	}
}

func TestGetNotFound(t *testing.T) {
	r := New()

	if _, err := r.Get("missing"); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestHeartbeatWithoutStatusKeepsStatus(t *testing.T) {
	r := New()

	agent, err := r.Register("a", "", "http://agent:8003", []string{"x"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Deactivate(agent.AgentID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	before, _ := r.Get(agent.AgentID)
	time.Sleep(5 * time.Millisecond)

	if err := r.Heartbeat(agent.AgentID, ""); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}

	after, _ := r.Get(agent.AgentID)
	if after.Status != domain.AgentStatusInactive {
		t.Fatalf("heartbeat without status changed status to %s", after.Status)
	}
	if !after.LastHeartbeat.After(before.LastHeartbeat) {
		t.Fatal("heartbeat did not advance last_heartbeat")
	}
}

func TestHeartbeatStatusTransitions(t *testing.T) {
	r := New()

	agent, _ := r.Register("a", "", "http://agent:8003", []string{"x"})

	if err := r.Heartbeat(agent.AgentID, domain.AgentStatusInactive); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}
	got, _ := r.Get(agent.AgentID)
	if got.Status != domain.AgentStatusInactive {
		t.Fatalf("expected inactive, got %s", got.Status)
	}

	if err := r.Heartbeat(agent.AgentID, domain.AgentStatusActive); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}
	got, _ = r.Get(agent.AgentID)
	if got.Status != domain.AgentStatusActive {
		t.Fatalf("expected active after reactivation, got %s", got.Status)
	}

	if err := r.Heartbeat(agent.AgentID, "degraded"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := r.Heartbeat("missing", ""); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestFindByCapabilityFiltersInactive(t *testing.T) {
	r := New()

	a, _ := r.Register("a", "", "http://a:8003", []string{"incident_analysis"})
	b, _ := r.Register("b", "", "http://b:8003", []string{"incident_analysis", "reporting"})
	r.Register("c", "", "http://c:8003", []string{"reporting"})

	if err := r.Deactivate(b.AgentID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	got := r.FindByCapability("incident_analysis")
	if len(got) != 1 || got[0].AgentID != a.AgentID {
		t.Fatalf("expected only agent a, got %+v", got)
	}
}

func TestFindByCapabilityPreservesRegistrationOrder(t *testing.T) {
	r := New()

	var want []string
	for _, name := range []string{"first", "second", "third"} {
		agent, _ := r.Register(name, "", "http://"+name+":8003", []string{"cap"})
		want = append(want, agent.AgentID)
	}

	for i := 0; i < 5; i++ {
		got := r.FindByCapability("cap")
		if len(got) != 3 {
			t.Fatalf("expected 3 agents, got %d", len(got))
		}
		for j := range got {
			if got[j].AgentID != want[j] {
				t.Fatalf("order mismatch at %d: got %s want %s", j, got[j].AgentID, want[j])
			}
		}
	}
}

func TestDemoteStale(t *testing.T) {
	r := New()

	agent, _ := r.Register("a", "", "http://a:8003", []string{"cap"})

	// Cutoff in the future: the fresh heartbeat is already older than it.
	n := r.DemoteStale(time.Now().Add(time.Second))
	if n != 1 {
		t.Fatalf("expected 1 demotion, got %d", n)
	}
	got, _ := r.Get(agent.AgentID)
	if got.Status != domain.AgentStatusInactive {
		t.Fatalf("expected inactive after demotion, got %s", got.Status)
	}

	// A heartbeat with explicit status reactivates.
	if err := r.Heartbeat(agent.AgentID, domain.AgentStatusActive); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}
	if n := r.DemoteStale(time.Now().Add(-time.Hour)); n != 0 {
		t.Fatalf("expected no demotions for fresh heartbeat, got %d", n)
	}
}

func TestListReturnsCopies(t *testing.T) {
	r := New()

	r.Register("a", "", "http://a:8003", []string{"cap"})
	list := r.List()
	list[0].Status = domain.AgentStatusInactive
	list[0].Capabilities[0] = "mutated"

	got := r.List()
	if got[0].Status != domain.AgentStatusActive || got[0].Capabilities[0] != "cap" {
		t.Fatalf("registry state aliased by caller: %+v", got[0])
	}
}
