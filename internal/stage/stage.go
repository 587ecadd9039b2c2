// Package stage defines the contract each pipeline stage implements and the
// shared run state stages pass along.
package stage

import (
	"context"

	"ladle/internal/config"
	"ladle/internal/knowledge"
	"ladle/internal/subtitle"
)

// Run carries one video's in-flight state between stages.
type Run struct {
	Config    *config.Config
	Workspace config.Workspace
	RunID     string

	// Resume skips stages whose artifacts survive from an earlier run.
	Resume bool

	// Populated by ingest.
	DurationMS int64
	Procedure  *knowledge.Procedure

	// Populated by the sentences stage.
	Sentences []subtitle.SentenceSpan
}

// Handler describes the contract the pipeline runner needs from each stage.
type Handler interface {
	Prepare(context.Context, *Run) error
	Execute(context.Context, *Run) error
	HealthCheck(context.Context) Health
}

// Health summarizes the readiness of a pipeline stage.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
