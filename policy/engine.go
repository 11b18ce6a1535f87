// Package policy gates dispatch requests with an OPA/rego admission policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
// A policy that fails to compile is a startup failure.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.dispatch_policy.decision"),
		rego.Module("dispatch_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Input describes one dispatch request for admission.
type Input struct {
	TargetCapability string `json:"target_capability"`
	SourceAgentID    string `json:"source_agent_id"`
	Origin           string `json:"origin"` // "api" or "webhook"
}

// Evaluate checks the dispatch policy.
// Returns the decision ("allow" or "block"). The policy must define a default.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	in := map[string]interface{}{
		"target_capability": input.TargetCapability,
		"source_agent_id":   input.SourceAgentID,
		"origin":            input.Origin,
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(in))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "allow", nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return "allow", nil
}

// DefaultPolicy is the built-in admission policy: capabilities under the
// reserved "mcp." prefix are not routable by unidentified external callers.
const DefaultPolicy = `
package dispatch_policy

default decision = "allow"

decision = "block" {
	input.origin == "api"
	input.source_agent_id == ""
	startswith(input.target_capability, "mcp.")
}
`
