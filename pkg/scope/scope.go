// Package scope turns a manifest's raw permissions into an
// enforcement-ready scope. Resolution is a pure reduction: the result is
// always a subset of the manifest's ceiling, never an expansion.
package scope

import (
	"github.com/castellanhq/castellan/pkg/core"
	"github.com/castellanhq/castellan/pkg/manifest"
)

// Resolve derives the enforcement-ready scope of a manifest.
//
// Tool filtering drops any tool whose capability tags exceed the role's
// permissions; tools without capability tags pass through. The network
// policy only ever carries an explicit allowlist: both "denied" and
// "unrestricted" collapse to none, so no ambient network grant can survive
// resolution.
func Resolve(m core.AgentManifest) core.ResolvedScope {
	return core.ResolvedScope{
		EffectiveTools:   filterTools(m),
		Network:          networkPolicy(m.Permissions),
		Filesystem:       filesystemPolicy(m.Permissions),
		MaxExecutionTime: m.Permissions.MaxExecutionTime,
		MaxCostUSD:       m.Permissions.MaxCostUSD,
	}
}

func filterTools(m core.AgentManifest) []string {
	tools := make([]string, 0, len(m.Tools))
	for _, tool := range m.Tools {
		if !m.Permissions.AllowNetwork && manifest.HasCapability(tool, manifest.CapabilityNetwork) {
			continue
		}
		if !m.Permissions.AllowFilesystem && manifest.HasCapability(tool, manifest.CapabilityFilesystem) {
			continue
		}
		tools = append(tools, tool)
	}
	return tools
}

func networkPolicy(p core.Permissions) core.NetworkPolicy {
	if p.AllowNetwork && len(p.NetworkAllowlist) > 0 {
		return core.NetworkAllowlist(p.NetworkAllowlist)
	}
	return core.NetworkNone()
}

func filesystemPolicy(p core.Permissions) core.FilesystemPolicy {
	if p.AllowFilesystem {
		return core.FilesystemWorkspaceOnly
	}
	return core.FilesystemNone
}
