package pipeline

import (
	"context"
	"encoding/json"

	"github.com/castellanhq/castellan/pkg/core"
	"github.com/castellanhq/castellan/pkg/errors"
	"github.com/castellanhq/castellan/pkg/response"
)

// Raw stage functions return agent output as free-form text. The adapters
// below recover the JSON payload, validate its shape, and hand the typed
// value to the orchestrator, so a text-producing agent integration plugs
// into the same Stages slot as a typed one.

// RawDisambiguateFunc is a product stage that emits text.
type RawDisambiguateFunc func(ctx context.Context, in DisambiguationInput) (string, error)

// RawExecuteFunc is a dev stage that emits text.
type RawExecuteFunc func(ctx context.Context, in ExecutionInput) (string, error)

// RawValidateFunc is a qa stage that emits text.
type RawValidateFunc func(ctx context.Context, in ValidationInput) (string, error)

// AdaptDisambiguate wraps a text-producing product stage.
func AdaptDisambiguate(fn RawDisambiguateFunc) DisambiguateFunc {
	return func(ctx context.Context, in DisambiguationInput) (*core.IntentSpec, error) {
		raw, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}
		return decodeStage[core.IntentSpec](raw, "disambiguate", response.ValidateIntentSpec)
	}
}

// AdaptExecute wraps a text-producing dev stage.
func AdaptExecute(fn RawExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, in ExecutionInput) (*core.ExecutionOutput, error) {
		raw, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}
		return decodeStage[core.ExecutionOutput](raw, "execute", response.ValidateExecutionOutput)
	}
}

// AdaptValidate wraps a text-producing qa stage.
func AdaptValidate(fn RawValidateFunc) ValidateFunc {
	return func(ctx context.Context, in ValidationInput) (*core.ValidationReport, error) {
		raw, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}
		report, err := decodeStage[core.ValidationReport](raw, "validate", response.ValidateValidationReport)
		if err != nil {
			return nil, err
		}
		// The verdict is always recomputed from the evidence: a reported
		// verdict that contradicts its own evidence is not trusted.
		report.ComputeVerdict()
		return report, nil
	}
}

// decodeStage recovers one typed value from free-form stage output. Both
// failure modes are structural: the stage is simply re-asked.
func decodeStage[T any](raw, stageName string, validate response.Validator) (*T, error) {
	value, perr := response.Parse(raw, validate)
	if perr != nil {
		return nil, errors.New(errors.CodeMalformedOutput, "stage output unusable", perr).
			WithContext("stage", stageName).
			WithContext("parse_code", string(perr.Code))
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "re-encode stage output", err)
	}
	var out T
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, errors.New(errors.CodeMalformedOutput, "stage output does not decode", err).
			WithContext("stage", stageName)
	}
	return &out, nil
}
