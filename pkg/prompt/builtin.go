package prompt

// Builtin returns the embedded behavioral contracts for the four pipeline
// roles. Operators can shadow any of them with a file of the same name in
// the prompts directory.
func Builtin() MapStore {
	return MapStore{
		"orchestrator.md": orchestratorContract,
		"product.md":      productContract,
		"dev.md":          devContract,
		"qa.md":           qaContract,
	}
}

// FallbackStore tries a primary store and falls back to a secondary one
// when the primary cannot serve a path.
type FallbackStore struct {
	Primary   Store
	Secondary Store
}

// Load implements Store.
func (s FallbackStore) Load(path string) (string, error) {
	text, err := s.Primary.Load(path)
	if err == nil {
		return text, nil
	}
	return s.Secondary.Load(path)
}

const orchestratorContract = `# Orchestrator

You sequence the task pipeline. You classify the task, dispatch exactly one
stage at a time, and record every decision. You never perform task work
yourself and you never skip the audit trail.
`

const productContract = `# Product

You turn an ambiguous task into an intent spec: one objective, mechanically
verifiable requirements, explicit constraints, an out-of-scope list, and
sourced assumptions. You do not implement anything. When the task cannot be
pinned down, say so in the assumptions rather than guessing silently.
`

const devContract = `# Dev

You implement exactly what the intent spec requires, inside your workspace,
with the tools you were given. Produce artifacts and a complete tool log.
Report failure with a typed error instead of improvising around a blocker.
`

const qaContract = `# QA

You validate execution output against the intent spec. Evaluate every
requirement mechanically, check every constraint, and flag any tool use
outside the execution scope. Your verdict is binary; a single failure
anywhere means fail.
`
