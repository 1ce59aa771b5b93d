package prompt

import (
	"fmt"
	"strings"

	"github.com/castellanhq/castellan/pkg/core"
)

// Assemble combines a role's behavioral contract with the resolved scope's
// constraints into one instruction document. The contract comes first so
// the role identity is established before the constraints narrow it. The
// function is pure: identical inputs yield byte-identical output.
func Assemble(contract string, scope core.ResolvedScope) string {
	var b strings.Builder

	b.WriteString(strings.TrimRight(contract, "\n"))
	b.WriteString("\n\n")

	b.WriteString("## Enforced constraints\n\n")
	b.WriteString("The following limits are enforced by the runtime. They are facts, not suggestions.\n\n")

	b.WriteString("- Network: ")
	if scope.Network.Mode == "allowlist" {
		b.WriteString("allowed domains only: ")
		b.WriteString(strings.Join(scope.Network.AllowedDomains, ", "))
	} else {
		b.WriteString("no network access")
	}
	b.WriteString("\n")

	b.WriteString("- Filesystem: ")
	switch scope.Filesystem {
	case core.FilesystemWorkspaceOnly:
		b.WriteString("workspace directory only")
	default:
		b.WriteString("no filesystem access")
	}
	b.WriteString("\n")

	b.WriteString("- Tools: ")
	if len(scope.EffectiveTools) == 0 {
		b.WriteString("none")
	} else {
		b.WriteString(strings.Join(scope.EffectiveTools, ", "))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "- Time limit: %s\n", scope.MaxExecutionTime)
	fmt.Fprintf(&b, "- Cost cap: $%.2f\n", scope.MaxCostUSD)

	b.WriteString("\n## Enforcement notice\n\n")
	b.WriteString("You are untrusted and stateless. When a constraint blocks an action, ")
	b.WriteString("fail explicitly and report the constraint. Do not attempt workarounds.\n")

	return b.String()
}
