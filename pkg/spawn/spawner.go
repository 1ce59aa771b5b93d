// Package spawn produces ready-to-execute agent records from a manifest
// and a task. At this layer an agent is a configuration artifact, not a
// process: the spawner resolves scope, assembles instructions, and assigns
// an isolated workspace path, nothing more.
package spawn

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/castellanhq/castellan/pkg/core"
	"github.com/castellanhq/castellan/pkg/prompt"
	"github.com/castellanhq/castellan/pkg/scope"
)

// Spawner builds SpawnedAgent records.
type Spawner struct {
	prompts       prompt.Store
	workspaceRoot string
}

// New creates a spawner that loads contracts from prompts and roots agent
// workspaces under workspaceRoot.
func New(prompts prompt.Store, workspaceRoot string) *Spawner {
	return &Spawner{prompts: prompts, workspaceRoot: workspaceRoot}
}

// Spawn resolves a manifest against a task into a ready-to-run agent
// record. The contract read is the only external failure surface; every
// other step is total. Exactly one of the returns is non-nil.
func (s *Spawner) Spawn(m core.AgentManifest, task *core.Task) (*core.SpawnedAgent, *Error) {
	if spawnErr := validateManifest(m); spawnErr != nil {
		return nil, spawnErr
	}

	contract, err := s.prompts.Load(m.SystemPromptPath)
	if err != nil {
		return nil, newError(ErrSystemPromptMissing, m.Role, "contract %q: %v", m.SystemPromptPath, err)
	}

	resolved := scope.Resolve(m)
	if spawnErr := checkAttenuation(m, resolved); spawnErr != nil {
		return nil, spawnErr
	}

	agentID := newAgentID(m.Role)
	return &core.SpawnedAgent{
		ID:            agentID,
		Manifest:      m,
		Task:          task,
		Instructions:  prompt.Assemble(contract, resolved),
		Scope:         resolved,
		WorkspacePath: filepath.Join(s.workspaceRoot, task.ID, agentID),
		CreatedAt:     time.Now().UTC(),
		Status:        core.AgentStatusCreated,
	}, nil
}

func validateManifest(m core.AgentManifest) *Error {
	if m.Role == "" {
		return newError(ErrManifestInvalid, m.Role, "missing role name")
	}
	if m.SystemPromptPath == "" {
		return newError(ErrManifestInvalid, m.Role, "missing system prompt path")
	}
	if len(m.Tools) == 0 {
		return newError(ErrManifestInvalid, m.Role, "no tools declared")
	}
	if m.Permissions.MaxExecutionTime < 0 || m.Permissions.MaxCostUSD < 0 {
		return newError(ErrManifestInvalid, m.Role, "negative resource ceiling")
	}
	if !m.Permissions.AllowNetwork && len(m.Permissions.NetworkAllowlist) > 0 {
		return newError(ErrPermissionConflict, m.Role,
			"network allowlist declared while network access is denied")
	}
	return nil
}

// checkAttenuation verifies the resolved scope stayed within the manifest
// ceiling. Resolution is a pure reduction so this cannot fire for a valid
// resolver, but spawn is the enforcement boundary and checks anyway.
func checkAttenuation(m core.AgentManifest, resolved core.ResolvedScope) *Error {
	declared := make(map[string]bool, len(m.Tools))
	for _, tool := range m.Tools {
		declared[tool] = true
	}
	for _, tool := range resolved.EffectiveTools {
		if !declared[tool] {
			return newError(ErrScopeViolation, m.Role,
				"resolved tool %q is not declared by the manifest", tool)
		}
	}
	if resolved.Network.Mode == "allowlist" && !m.Permissions.AllowNetwork {
		return newError(ErrScopeViolation, m.Role, "resolved network policy exceeds denied permission")
	}
	if resolved.Filesystem == core.FilesystemWorkspaceOnly && !m.Permissions.AllowFilesystem {
		return newError(ErrScopeViolation, m.Role, "resolved filesystem policy exceeds denied permission")
	}
	return nil
}

// newAgentID builds a human-legible identifier unique enough not to
// collide within a task.
func newAgentID(role string) string {
	return fmt.Sprintf("%s-%d-%s", role, time.Now().UnixMilli(), uuid.NewString()[:8])
}
