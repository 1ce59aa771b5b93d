// SPDX-License-Identifier: Apache-2.0
// Package telemetry provides observability for the pipeline kernel.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics tracks task outcomes, spawn failures, and retry volume.
type PipelineMetrics struct {
	// tasksTotal counts completed pipeline runs by final status.
	tasksTotal metric.Int64Counter

	// spawnErrors counts spawner failures by error code.
	spawnErrors metric.Int64Counter

	// stageRetries counts retry attempts by stage.
	stageRetries metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline metric instruments.
func NewPipelineMetrics() (*PipelineMetrics, error) {
	meter := otel.Meter("castellan/pipeline")

	tasksTotal, err := meter.Int64Counter(
		"castellan.tasks.total",
		metric.WithDescription("Completed pipeline runs by final status"),
	)
	if err != nil {
		return nil, err
	}

	spawnErrors, err := meter.Int64Counter(
		"castellan.spawn.errors",
		metric.WithDescription("Spawner failures by error code"),
	)
	if err != nil {
		return nil, err
	}

	stageRetries, err := meter.Int64Counter(
		"castellan.stage.retries",
		metric.WithDescription("Stage retry attempts by stage name"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		tasksTotal:   tasksTotal,
		spawnErrors:  spawnErrors,
		stageRetries: stageRetries,
	}, nil
}

// RecordTask records one finished pipeline run.
func (m *PipelineMetrics) RecordTask(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.tasksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordSpawnError records one spawner failure.
func (m *PipelineMetrics) RecordSpawnError(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.spawnErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// RecordRetry records one stage retry attempt.
func (m *PipelineMetrics) RecordRetry(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.stageRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}
