// Package manifest holds the static role definitions and the tool
// capability table. Both are read-only after process start.
package manifest

import (
	"sort"
	"time"

	"github.com/castellanhq/castellan/pkg/core"
)

// Registry looks up role manifests by role name.
type Registry interface {
	Get(role string) (core.AgentManifest, bool)
	Roles() []string
}

// StaticRegistry is a fixed in-memory registry.
type StaticRegistry struct {
	manifests map[string]core.AgentManifest
}

// NewStaticRegistry builds a registry from the given manifests.
func NewStaticRegistry(manifests []core.AgentManifest) *StaticRegistry {
	m := make(map[string]core.AgentManifest, len(manifests))
	for _, mf := range manifests {
		m[mf.Role] = mf
	}
	return &StaticRegistry{manifests: m}
}

// Get implements Registry.
func (r *StaticRegistry) Get(role string) (core.AgentManifest, bool) {
	mf, ok := r.manifests[role]
	return mf, ok
}

// Roles returns the registered role names, sorted.
func (r *StaticRegistry) Roles() []string {
	roles := make([]string, 0, len(r.manifests))
	for role := range r.manifests {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// Default returns the built-in registry with the four pipeline roles.
func Default() *StaticRegistry {
	return NewStaticRegistry([]core.AgentManifest{
		{
			Role:             "orchestrator",
			Runtime:          "local",
			SystemPromptPath: "orchestrator.md",
			Permissions: core.Permissions{
				AllowNetwork:     false,
				AllowFilesystem:  false,
				MaxExecutionTime: 5 * time.Minute,
				MaxCostUSD:       1.0,
			},
			Tools: []string{"classify_task"},
		},
		{
			Role:             "product",
			Runtime:          "local",
			SystemPromptPath: "product.md",
			Permissions: core.Permissions{
				AllowNetwork:     false,
				AllowFilesystem:  false,
				MaxExecutionTime: 10 * time.Minute,
				MaxCostUSD:       2.0,
			},
			Tools: []string{"read_context", "write_spec"},
		},
		{
			Role:             "dev",
			Runtime:          "local",
			SystemPromptPath: "dev.md",
			Permissions: core.Permissions{
				AllowNetwork:     false,
				AllowFilesystem:  true,
				MaxExecutionTime: 30 * time.Minute,
				MaxCostUSD:       5.0,
			},
			Tools: []string{"read_file", "write_file", "run_command", "fetch_url"},
		},
		{
			Role:             "qa",
			Runtime:          "local",
			SystemPromptPath: "qa.md",
			Permissions: core.Permissions{
				AllowNetwork:     false,
				AllowFilesystem:  true,
				MaxExecutionTime: 15 * time.Minute,
				MaxCostUSD:       2.0,
			},
			Tools: []string{"read_file", "run_command"},
		},
	})
}
