package policy

import (
	"context"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	e, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to prepare policy: %v", err)
	}
	return e
}

func TestDefaultPolicyAllows(t *testing.T) {
	e := newTestEngine(t)

	decision, err := e.Evaluate(context.Background(), Input{
		TargetCapability: "incident_analysis",
		SourceAgentID:    "",
		Origin:           "api",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "allow" {
		t.Fatalf("expected allow, got %q", decision)
	}
}

func TestReservedCapabilityBlockedForAnonymousAPI(t *testing.T) {
	e := newTestEngine(t)

	decision, err := e.Evaluate(context.Background(), Input{
		TargetCapability: "mcp.registry_admin",
		SourceAgentID:    "",
		Origin:           "api",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "block" {
		t.Fatalf("expected block, got %q", decision)
	}
}

func TestReservedCapabilityAllowedForIdentifiedCaller(t *testing.T) {
	e := newTestEngine(t)

	decision, err := e.Evaluate(context.Background(), Input{
		TargetCapability: "mcp.registry_admin",
		SourceAgentID:    "agent-1",
		Origin:           "api",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "allow" {
		t.Fatalf("expected allow, got %q", decision)
	}
}

func TestReservedCapabilityAllowedFromWebhookOrigin(t *testing.T) {
	e := newTestEngine(t)

	decision, err := e.Evaluate(context.Background(), Input{
		TargetCapability: "mcp.registry_admin",
		SourceAgentID:    "",
		Origin:           "webhook",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "allow" {
		t.Fatalf("expected allow, got %q", decision)
	}
}

func TestInvalidPolicyFailsPreparation(t *testing.T) {
	_, err := NewEngine(context.Background(), "package dispatch_policy\n\ndecision = {")
	if err == nil {
		t.Fatal("expected compile error for malformed policy")
	}
}
