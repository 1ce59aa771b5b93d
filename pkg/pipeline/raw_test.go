package pipeline

import (
	"context"
	"testing"

	"github.com/castellanhq/castellan/pkg/core"
	"github.com/castellanhq/castellan/pkg/errors"
	ctesting "github.com/castellanhq/castellan/pkg/testing"
)

const rawExecutionOutput = "Work is done, summary below.\n```json\n" + `{
  "spec_id": "spec-abc12345",
  "status": "completed",
  "artifacts": [{"path": "result.md", "content": "done", "type": "text/markdown"}],
  "tool_log": [{"tool": "write_file", "input": "result.md", "output": "ok"}]
}` + "\n```\nLet me know if anything else is needed."

func TestAdaptExecute_RecoversFencedJSON(t *testing.T) {
	fn := AdaptExecute(func(context.Context, ExecutionInput) (string, error) {
		return rawExecutionOutput, nil
	})

	out, err := fn(context.Background(), ExecutionInput{Spec: &core.IntentSpec{ID: "spec-abc12345"}})
	ctesting.RequireNoError(t, err, "adapt execute")
	ctesting.RequireNotNil(t, out, "execution output")
	ctesting.RequireEqual(t, core.ExecutionCompleted, out.Status, "status")
	ctesting.RequireEqual(t, 1, len(out.Artifacts), "artifact count")
	ctesting.RequireEqual(t, "write_file", out.ToolLog[0].Tool, "tool log entry")
}

func TestAdaptExecute_NoiseIsMalformedOutput(t *testing.T) {
	fn := AdaptExecute(func(context.Context, ExecutionInput) (string, error) {
		return "I could not produce structured output, sorry.", nil
	})

	_, err := fn(context.Background(), ExecutionInput{Spec: &core.IntentSpec{ID: "s"}})
	if err == nil {
		t.Fatal("expected error for unparseable output")
	}
	ce := errors.AsError(err)
	if ce.Code != errors.CodeMalformedOutput {
		t.Errorf("expected MALFORMED_OUTPUT, got %s", ce.Code)
	}
	if ce.Context["parse_code"] != "invalid_json" {
		t.Errorf("expected invalid_json parse code, got %v", ce.Context["parse_code"])
	}
	if !errors.IsStructural(err) {
		t.Error("malformed output must be retryable")
	}
}

func TestAdaptExecute_WrongShapeIsSchemaMismatch(t *testing.T) {
	fn := AdaptExecute(func(context.Context, ExecutionInput) (string, error) {
		// Well-formed JSON, but no status field.
		return `{"spec_id": "s", "artifacts": []}`, nil
	})

	_, err := fn(context.Background(), ExecutionInput{Spec: &core.IntentSpec{ID: "s"}})
	if err == nil {
		t.Fatal("expected error for wrong shape")
	}
	ce := errors.AsError(err)
	if ce.Context["parse_code"] != "schema_mismatch" {
		t.Errorf("expected schema_mismatch parse code, got %v", ce.Context["parse_code"])
	}
}

func TestAdaptDisambiguate_TypedSpecSurvivesRoundTrip(t *testing.T) {
	raw := `{
  "id": "spec-11112222",
  "objective": "Ship the thing",
  "requirements": [{"id": "req-1", "description": "d", "verification": "v"}],
  "constraints": ["stay in scope"],
  "out_of_scope": ["everything else"],
  "assumptions": [{"statement": "s", "source": "task body"}],
  "context_refs": []
}`
	fn := AdaptDisambiguate(func(context.Context, DisambiguationInput) (string, error) {
		return raw, nil
	})

	spec, err := fn(context.Background(), DisambiguationInput{Task: core.NewTask("Ship the thing", "")})
	ctesting.RequireNoError(t, err, "adapt disambiguate")
	ctesting.RequireNoError(t, spec.Validate(), "decoded spec validity")
	ctesting.RequireEqual(t, "Ship the thing", spec.Objective, "objective")
}

func TestAdaptValidate_RecomputesVerdict(t *testing.T) {
	// The reported verdict says pass, but a requirement is unsatisfied.
	raw := `{
  "spec_id": "s",
  "verdict": "pass",
  "requirements": [{"requirement_id": "req-1", "satisfied": false, "evidence": "missing"}],
  "constraints": [],
  "summary": {}
}`
	fn := AdaptValidate(func(context.Context, ValidationInput) (string, error) {
		return raw, nil
	})

	report, err := fn(context.Background(), ValidationInput{})
	ctesting.RequireNoError(t, err, "adapt validate")
	ctesting.RequireEqual(t, core.VerdictFail, report.Verdict, "recomputed verdict")
	ctesting.RequireEqual(t, 0, report.Summary.RequirementsSatisfied, "satisfied count")
}

func TestAdaptExecute_StageErrorPassesThrough(t *testing.T) {
	want := errors.New(errors.CodeToolFailure, "boom", nil)
	fn := AdaptExecute(func(context.Context, ExecutionInput) (string, error) {
		return "", want
	})

	_, err := fn(context.Background(), ExecutionInput{})
	if err != want {
		t.Errorf("stage errors must pass through unwrapped, got %v", err)
	}
}
