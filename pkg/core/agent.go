package core

import "time"

// AgentStatus is the lifecycle state of a spawned agent record.
type AgentStatus string

const (
	// AgentStatusCreated is the only status assigned at this layer: a
	// SpawnedAgent is a configuration artifact, not a running process.
	AgentStatusCreated AgentStatus = "created"
)

// SpawnedAgent is a fully resolved, ready-to-run agent instance. It is
// produced once by the spawner and never mutated; destruction is an audit
// event, not a state change.
type SpawnedAgent struct {
	ID            string
	Manifest      AgentManifest
	Task          *Task
	Instructions  string
	Scope         ResolvedScope
	WorkspacePath string
	CreatedAt     time.Time
	Status        AgentStatus
}
