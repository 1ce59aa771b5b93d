package manifest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/castellanhq/castellan/pkg/core"
)

// manifestFile is the on-disk layout of a manifest document. Durations
// are written in Go syntax ("10m", "1h30m").
type manifestFile struct {
	Manifests []manifestEntry `yaml:"manifests"`
}

type manifestEntry struct {
	Role         string           `yaml:"role"`
	Runtime      string           `yaml:"runtime"`
	SystemPrompt string           `yaml:"system_prompt"`
	Permissions  permissionsEntry `yaml:"permissions"`
	Tools        []string         `yaml:"tools"`
}

type permissionsEntry struct {
	AllowNetwork     bool     `yaml:"allow_network"`
	NetworkAllowlist []string `yaml:"network_allowlist"`
	AllowFilesystem  bool     `yaml:"allow_filesystem"`
	MaxExecutionTime string   `yaml:"max_execution_time"`
	MaxCostUSD       float64  `yaml:"max_cost_usd"`
}

// ParseYAML loads manifests from a YAML document and validates each entry.
func ParseYAML(data []byte) ([]core.AgentManifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty manifest payload")
	}
	var doc manifestFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest yaml: %w", err)
	}
	if len(doc.Manifests) == 0 {
		return nil, fmt.Errorf("manifest document has no entries")
	}
	manifests := make([]core.AgentManifest, 0, len(doc.Manifests))
	for _, entry := range doc.Manifests {
		m, err := entry.toManifest()
		if err != nil {
			return nil, err
		}
		if err := Validate(m); err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}

func (e manifestEntry) toManifest() (core.AgentManifest, error) {
	var maxTime time.Duration
	if e.Permissions.MaxExecutionTime != "" {
		parsed, err := time.ParseDuration(e.Permissions.MaxExecutionTime)
		if err != nil {
			return core.AgentManifest{}, fmt.Errorf("manifest %q: bad max_execution_time: %w", e.Role, err)
		}
		maxTime = parsed
	}
	return core.AgentManifest{
		Role:             e.Role,
		Runtime:          e.Runtime,
		SystemPromptPath: e.SystemPrompt,
		Permissions: core.Permissions{
			AllowNetwork:     e.Permissions.AllowNetwork,
			NetworkAllowlist: e.Permissions.NetworkAllowlist,
			AllowFilesystem:  e.Permissions.AllowFilesystem,
			MaxExecutionTime: maxTime,
			MaxCostUSD:       e.Permissions.MaxCostUSD,
		},
		Tools: e.Tools,
	}, nil
}

// LoadRegistry reads a YAML manifest file and returns a registry backed by
// its entries.
func LoadRegistry(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest file: %w", err)
	}
	manifests, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	return NewStaticRegistry(manifests), nil
}

// Validate checks the structural minimums of a manifest: a role name, a
// system prompt path, at least one tool, and a permission record that does
// not contradict itself (a network allowlist on a role with network denied
// is a conflict, not an implicit grant).
func Validate(mf core.AgentManifest) error {
	if mf.Role == "" {
		return fmt.Errorf("manifest missing role")
	}
	if mf.SystemPromptPath == "" {
		return fmt.Errorf("manifest %q missing system prompt path", mf.Role)
	}
	if len(mf.Tools) == 0 {
		return fmt.Errorf("manifest %q declares no tools", mf.Role)
	}
	if !mf.Permissions.AllowNetwork && len(mf.Permissions.NetworkAllowlist) > 0 {
		return fmt.Errorf("manifest %q: network allowlist set while network is denied", mf.Role)
	}
	if mf.Permissions.MaxExecutionTime < 0 {
		return fmt.Errorf("manifest %q: negative execution time limit", mf.Role)
	}
	if mf.Permissions.MaxCostUSD < 0 {
		return fmt.Errorf("manifest %q: negative cost budget", mf.Role)
	}
	return nil
}
