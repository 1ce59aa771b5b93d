package manifest

// Capability tags a tool with the resource class it touches. Scope
// resolution drops tools whose capabilities exceed a role's permissions.
type Capability string

const (
	CapabilityNetwork    Capability = "network"
	CapabilityFilesystem Capability = "filesystem"
)

// toolCapabilities maps tool names to their capability tags. Tools absent
// from this table are capability-free and always pass filtering.
var toolCapabilities = map[string][]Capability{
	"fetch_url":    {CapabilityNetwork},
	"http_request": {CapabilityNetwork},
	"read_file":    {CapabilityFilesystem},
	"write_file":   {CapabilityFilesystem},
	"run_command":  {CapabilityFilesystem},
}

// Capabilities returns the capability tags for a tool name. The returned
// slice is nil for unknown tools.
func Capabilities(tool string) []Capability {
	return toolCapabilities[tool]
}

// HasCapability reports whether the tool carries the given tag.
func HasCapability(tool string, cap Capability) bool {
	for _, c := range toolCapabilities[tool] {
		if c == cap {
			return true
		}
	}
	return false
}
