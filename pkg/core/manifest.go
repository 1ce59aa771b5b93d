package core

import "time"

// Permissions is the ceiling an operator declares for a role. Nothing
// downstream may exceed it; scope resolution only narrows it.
type Permissions struct {
	AllowNetwork     bool          `json:"allow_network"`
	NetworkAllowlist []string      `json:"network_allowlist,omitempty"`
	AllowFilesystem  bool          `json:"allow_filesystem"`
	MaxExecutionTime time.Duration `json:"max_execution_time"`
	MaxCostUSD       float64       `json:"max_cost_usd"`
}

// AgentManifest is the static definition of a role. Manifests are read,
// never written, by every kernel component.
type AgentManifest struct {
	Role             string      `json:"role"`
	Runtime          string      `json:"runtime"`
	SystemPromptPath string      `json:"system_prompt"`
	Permissions      Permissions `json:"permissions"`
	Tools            []string    `json:"tools"`
}

// NetworkPolicy describes the enforcement-ready network stance of a scope.
// There is no "unrestricted" value: an open permission collapses to none.
type NetworkPolicy struct {
	Mode           string   // "none" or "allowlist"
	AllowedDomains []string // set only when Mode is "allowlist"
}

// FilesystemPolicy is the enforcement-ready filesystem stance.
type FilesystemPolicy string

const (
	FilesystemNone          FilesystemPolicy = "none"
	FilesystemWorkspaceOnly FilesystemPolicy = "workspace-only"
)

// NetworkNone is the closed network policy.
func NetworkNone() NetworkPolicy { return NetworkPolicy{Mode: "none"} }

// NetworkAllowlist is a network policy restricted to the given domains.
func NetworkAllowlist(domains []string) NetworkPolicy {
	return NetworkPolicy{Mode: "allowlist", AllowedDomains: append([]string(nil), domains...)}
}

// ResolvedScope is the enforcement-ready projection of a manifest. It is
// always a subset of the manifest's permissions, never an expansion.
type ResolvedScope struct {
	EffectiveTools   []string
	Network          NetworkPolicy
	Filesystem       FilesystemPolicy
	MaxExecutionTime time.Duration
	MaxCostUSD       float64
}
