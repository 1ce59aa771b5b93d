package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/castellanhq/castellan/pkg/core"
)

// Stage inputs and function contracts. The orchestrator does not care
// whether a stage is a static stub or a real remote call, only that it
// conforms to these signatures and returns synchronously.

// DisambiguationInput is what the product stage receives.
type DisambiguationInput struct {
	Task           *core.Task
	Classification core.ClassificationResult
}

// ExecutionInput is what the dev stage receives.
type ExecutionInput struct {
	Spec      *core.IntentSpec
	Scope     core.ResolvedScope
	Workspace string
}

// ValidationInput is what the qa stage receives. ExecScope is the scope
// the execution stage ran under; the validator checks the tool log
// against it.
type ValidationInput struct {
	Spec      *core.IntentSpec
	Output    *core.ExecutionOutput
	ExecScope core.ResolvedScope
}

// DisambiguateFunc produces an intent spec from an ambiguous task.
type DisambiguateFunc func(ctx context.Context, in DisambiguationInput) (*core.IntentSpec, error)

// ExecuteFunc carries out an intent spec.
type ExecuteFunc func(ctx context.Context, in ExecutionInput) (*core.ExecutionOutput, error)

// ValidateFunc derives a mechanical verdict from spec and output.
type ValidateFunc func(ctx context.Context, in ValidationInput) (*core.ValidationReport, error)

// Stages bundles the three pluggable stage implementations.
type Stages struct {
	Disambiguate DisambiguateFunc
	Execute      ExecuteFunc
	Validate     ValidateFunc
}

// StubStages returns the built-in placeholder stage set. The stubs honor
// the typed contracts so the kernel exercises the same paths a real agent
// integration would.
func StubStages() Stages {
	return Stages{
		Disambiguate: StubDisambiguate,
		Execute:      StubExecute,
		Validate:     StubValidate,
	}
}

// StubDisambiguate derives an intent spec directly from the task body.
func StubDisambiguate(_ context.Context, in DisambiguationInput) (*core.IntentSpec, error) {
	task := in.Task
	return &core.IntentSpec{
		ID:        core.NewSpecID(),
		Objective: task.Body,
		Requirements: []core.Requirement{
			{
				ID:           "req-1",
				Description:  "Deliver the outcome described by the task",
				Verification: "the produced artifacts address the task body as stated",
			},
		},
		Constraints: []string{"stay within the resolved scope of the executing agent"},
		OutOfScope:  []string{"anything not required by the stated objective"},
		Assumptions: []core.Assumption{
			{Statement: "the task body reflects the operator's intent", Source: "task body"},
		},
		ContextRefs: append([]string(nil), task.ContextDocs...),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// StubExecute emits one artifact and a minimal tool log, marked completed.
func StubExecute(_ context.Context, in ExecutionInput) (*core.ExecutionOutput, error) {
	tool := "write_file"
	if len(in.Scope.EffectiveTools) > 0 {
		tool = in.Scope.EffectiveTools[0]
	}
	return &core.ExecutionOutput{
		SpecID: in.Spec.ID,
		Status: core.ExecutionCompleted,
		Artifacts: []core.Artifact{
			{
				Path:    "result.md",
				Content: fmt.Sprintf("# Result\n\nObjective: %s\n", in.Spec.Objective),
				Type:    "text/markdown",
			},
		},
		ToolLog: []core.ToolInvocation{
			{Tool: tool, Input: in.Spec.Objective, Output: "ok"},
		},
	}, nil
}

// StubValidate evaluates the spec against the output mechanically: every
// requirement needs a supporting artifact, constraints are checked for
// recorded violations, and the tool log is checked against the execution
// scope. Any single failure forces a fail verdict.
func StubValidate(_ context.Context, in ValidationInput) (*core.ValidationReport, error) {
	report := &core.ValidationReport{SpecID: in.Spec.ID}

	executed := in.Output.Status == core.ExecutionCompleted
	for _, req := range in.Spec.Requirements {
		result := core.RequirementResult{RequirementID: req.ID}
		if executed && len(in.Output.Artifacts) > 0 {
			result.Satisfied = true
			result.Evidence = fmt.Sprintf("artifact %q produced for %q", in.Output.Artifacts[0].Path, req.Verification)
		} else {
			result.Evidence = "execution produced no artifacts"
		}
		report.Requirements = append(report.Requirements, result)
	}

	for _, constraint := range in.Spec.Constraints {
		report.Constraints = append(report.Constraints, core.ConstraintResult{
			Constraint: constraint,
			Evidence:   "no violation recorded in the tool log",
		})
	}

	allowed := make(map[string]bool, len(in.ExecScope.EffectiveTools))
	for _, tool := range in.ExecScope.EffectiveTools {
		allowed[tool] = true
	}
	for _, inv := range in.Output.ToolLog {
		if !allowed[inv.Tool] {
			report.Scope = append(report.Scope,
				fmt.Sprintf("tool %q invoked outside the resolved scope", inv.Tool))
		}
	}

	report.ComputeVerdict()
	return report, nil
}

// SynthesizeSpec builds the minimal single-requirement spec used when the
// route bypasses disambiguation. The audit trail stays symmetric between
// both routes even though this path has no disambiguation agent.
func SynthesizeSpec(task *core.Task) *core.IntentSpec {
	return &core.IntentSpec{
		ID:        core.NewSpecID(),
		Objective: task.Body,
		Requirements: []core.Requirement{
			{
				ID:           "req-1",
				Description:  task.Body,
				Verification: "the output satisfies the task body as stated",
			},
		},
		OutOfScope: []string{"anything beyond the literal task body"},
		Assumptions: []core.Assumption{
			{Statement: "the task body is complete and unambiguous", Source: "classifier route"},
		},
		ContextRefs: append([]string(nil), task.ContextDocs...),
		CreatedAt:   time.Now().UTC(),
	}
}
