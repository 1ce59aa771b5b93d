// Package pipeline sequences the fixed stage pipeline for one task:
// classification, optional disambiguation, execution, validation. Stages
// run strictly one at a time and every decision lands in the audit trail.
package pipeline

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/castellanhq/castellan/pkg/audit"
	"github.com/castellanhq/castellan/pkg/classify"
	"github.com/castellanhq/castellan/pkg/core"
	"github.com/castellanhq/castellan/pkg/errors"
	"github.com/castellanhq/castellan/pkg/manifest"
	"github.com/castellanhq/castellan/pkg/resilience"
	"github.com/castellanhq/castellan/pkg/spawn"
	"github.com/castellanhq/castellan/pkg/telemetry"
)

// Status is the terminal outcome of a pipeline run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusEscalated Status = "escalated"
)

// Result aggregates everything a run produced. Fields after the failing
// stage are nil when a run aborts early.
type Result struct {
	TaskID         string
	Status         Status
	Classification core.ClassificationResult
	Spec           *core.IntentSpec
	Execution      *core.ExecutionOutput
	Report         *core.ValidationReport
}

// Orchestrator drives the stage pipeline.
type Orchestrator struct {
	classifier *classify.Classifier
	spawner    *spawn.Spawner
	registry   manifest.Registry
	audit      audit.Log
	stages     Stages
	retry      resilience.RetryConfig
	metrics    *telemetry.PipelineMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStages overrides the built-in stub stages.
func WithStages(stages Stages) Option {
	return func(o *Orchestrator) { o.stages = stages }
}

// WithRetry overrides the stage retry policy.
func WithRetry(rc resilience.RetryConfig) Option {
	return func(o *Orchestrator) { o.retry = rc }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *telemetry.PipelineMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New creates an orchestrator. Stages default to the built-in stubs and
// retry defaults to three attempts on structural faults.
func New(registry manifest.Registry, spawner *spawn.Spawner, log audit.Log, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		classifier: classify.New(log),
		spawner:    spawner,
		registry:   registry,
		audit:      log,
		stages:     StubStages(),
		retry:      resilience.DefaultRetryConfig(),
		tracer:     otel.Tracer("castellan/pipeline"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes one task through the full pipeline. The returned result
// always carries a terminal status; the error is non-nil only when the
// run aborted before validation could produce a report.
func (o *Orchestrator) Run(ctx context.Context, task *core.Task) (*Result, error) {
	ctx, span := o.tracer.Start(ctx, "Pipeline.Run",
		trace.WithAttributes(attribute.String("task.id", task.ID)),
	)
	defer span.End()

	result := &Result{TaskID: task.ID}

	o.audit.Append(ctx, audit.NewEvent(audit.EventExecutionStart, task.ID, "", map[string]any{
		"body":      task.Body,
		"type_hint": string(task.Type),
	}))

	// Routing stage: the classifier runs under the orchestrator role.
	err := o.runStage(ctx, task, "orchestrator", "classify", func(ctx context.Context, agent *core.SpawnedAgent) error {
		result.Classification = o.classifier.Classify(ctx, task)
		return nil
	})
	if err != nil {
		return o.finish(ctx, task, result, err)
	}
	span.SetAttributes(
		attribute.String("task.category", string(result.Classification.Category)),
		attribute.String("task.route", string(result.Classification.Route)),
	)

	if result.Classification.Route == core.RouteProduct {
		err = o.runStage(ctx, task, "product", "disambiguate", func(ctx context.Context, agent *core.SpawnedAgent) error {
			spec, stageErr := o.stages.Disambiguate(ctx, DisambiguationInput{
				Task:           task,
				Classification: result.Classification,
			})
			if stageErr != nil {
				return stageErr
			}
			if validErr := spec.Validate(); validErr != nil {
				return errors.New(errors.CodeMalformedOutput, "disambiguation produced an invalid spec", validErr)
			}
			result.Spec = spec
			return nil
		})
		if err != nil {
			return o.finish(ctx, task, result, err)
		}
	} else {
		result.Spec = SynthesizeSpec(task)
		o.audit.Append(ctx, audit.NewEvent(audit.EventProductSkipped, task.ID, "", map[string]any{
			"reason":  "classifier routed directly to execution",
			"rule_id": result.Classification.RuleID,
			"spec_id": result.Spec.ID,
		}))
	}

	var execScope core.ResolvedScope
	err = o.runStage(ctx, task, "dev", "execute", func(ctx context.Context, agent *core.SpawnedAgent) error {
		execScope = agent.Scope
		output, stageErr := o.stages.Execute(ctx, ExecutionInput{
			Spec:      result.Spec,
			Scope:     agent.Scope,
			Workspace: agent.WorkspacePath,
		})
		if stageErr != nil {
			return stageErr
		}
		result.Execution = output
		return nil
	})
	if err != nil {
		return o.finish(ctx, task, result, err)
	}

	err = o.runStage(ctx, task, "qa", "validate", func(ctx context.Context, agent *core.SpawnedAgent) error {
		report, stageErr := o.stages.Validate(ctx, ValidationInput{
			Spec:      result.Spec,
			Output:    result.Execution,
			ExecScope: execScope,
		})
		if stageErr != nil {
			return stageErr
		}
		result.Report = report
		return nil
	})
	if err != nil {
		return o.finish(ctx, task, result, err)
	}

	return o.finish(ctx, task, result, nil)
}

// runStage spawns a fresh agent, runs fn against it, and records the
// spawn/destroy pair. Retries run the whole closure again with a new
// agent and no carried state; semantic faults return on the first pass.
func (o *Orchestrator) runStage(ctx context.Context, task *core.Task, role, stageName string, fn func(context.Context, *core.SpawnedAgent) error) error {
	rc := o.retry.WithOnRetry(func(attempt int, err error) {
		o.metrics.RecordRetry(ctx, stageName)
		o.audit.Append(ctx, audit.NewEvent(audit.EventRetry, task.ID, "", map[string]any{
			"stage":   stageName,
			"attempt": attempt,
			"error":   err.Error(),
		}))
	})

	return rc.Do(ctx, func() error {
		ctx, span := o.tracer.Start(ctx, "Pipeline.Stage",
			trace.WithAttributes(
				attribute.String("stage.name", stageName),
				attribute.String("stage.role", role),
			),
		)
		defer span.End()

		m, ok := o.registry.Get(role)
		if !ok {
			return errors.New(errors.CodeNotFound, "role not registered", nil).
				WithContext("role", role)
		}

		agent, spawnErr := o.spawner.Spawn(m, task)
		if spawnErr != nil {
			o.metrics.RecordSpawnError(ctx, string(spawnErr.Code))
			o.audit.Append(ctx, audit.NewEvent(audit.EventSpawnError, task.ID, "", map[string]any{
				"role":   spawnErr.Role,
				"code":   string(spawnErr.Code),
				"detail": spawnErr.Detail,
			}))
			return spawnToPipelineError(spawnErr)
		}

		o.audit.Append(ctx, audit.NewEvent(audit.EventAgentSpawned, task.ID, agent.ID, map[string]any{
			"role":      role,
			"stage":     stageName,
			"workspace": agent.WorkspacePath,
			"tools":     agent.Scope.EffectiveTools,
		}))

		err := fn(ctx, agent)

		// Destruction is an audit fact even when the stage failed.
		o.audit.Append(ctx, audit.NewEvent(audit.EventAgentDestroyed, task.ID, agent.ID, map[string]any{
			"role":  role,
			"stage": stageName,
		}))
		return err
	})
}

// finish stamps the terminal status, writes execution_end, and maps the
// error class to the task outcome.
func (o *Orchestrator) finish(ctx context.Context, task *core.Task, result *Result, err error) (*Result, error) {
	payload := map[string]any{}
	switch {
	case err == nil:
		result.Status = StatusCompleted
	case errors.IsSemantic(err):
		result.Status = StatusEscalated
		ce := errors.AsError(err)
		o.audit.Append(ctx, audit.NewEvent(audit.EventEscalation, task.ID, "", map[string]any{
			"code":    string(ce.Code),
			"message": ce.Message,
			"context": ce.Context,
		}))
	default:
		result.Status = StatusFailed
	}
	payload["status"] = string(result.Status)
	if err != nil {
		payload["error"] = err.Error()
	}
	if result.Report != nil {
		payload["verdict"] = string(result.Report.Verdict)
		payload["summary"] = map[string]any{
			"requirements_total":     result.Report.Summary.RequirementsTotal,
			"requirements_satisfied": result.Report.Summary.RequirementsSatisfied,
			"constraint_violations":  result.Report.Summary.ConstraintViolations,
			"scope_violations":       result.Report.Summary.ScopeViolations,
		}
	}
	o.audit.Append(ctx, audit.NewEvent(audit.EventExecutionEnd, task.ID, "", payload))
	o.metrics.RecordTask(ctx, string(result.Status))

	if err != nil {
		o.logger.ErrorContext(ctx, "pipeline run did not complete",
			"task_id", task.ID, "status", string(result.Status), "error", err)
		return result, err
	}
	o.logger.InfoContext(ctx, "pipeline run completed",
		"task_id", task.ID, "category", string(result.Classification.Category),
		"verdict", string(result.Report.Verdict))
	return result, nil
}

// spawnToPipelineError maps a spawn error onto the pipeline error
// taxonomy. Scope violations are semantic; the rest are structural.
func spawnToPipelineError(spawnErr *spawn.Error) error {
	code := errors.CodeInvalidInput
	if spawnErr.Code == spawn.ErrScopeViolation {
		code = errors.CodeScopeViolation
	}
	return errors.New(code, "agent spawn failed", spawnErr).
		WithContext("role", spawnErr.Role).
		WithContext("spawn_code", string(spawnErr.Code))
}
