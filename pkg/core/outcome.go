package core

// ExecutionStatus is binary: an execution either completed or failed.
// There are no partial states.
type ExecutionStatus string

const (
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// ExecutionErrorType classifies why an execution failed.
type ExecutionErrorType string

const (
	ExecErrScopeViolation ExecutionErrorType = "scope_violation"
	ExecErrSpecUnclear    ExecutionErrorType = "spec_unclear"
	ExecErrToolFailure    ExecutionErrorType = "tool_failure"
	ExecErrTimeout        ExecutionErrorType = "timeout"
	ExecErrInternal       ExecutionErrorType = "internal"
)

// Artifact is one concrete output produced by the execution stage.
type Artifact struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// ToolInvocation is one entry in the execution stage's tool log.
type ToolInvocation struct {
	Tool   string `json:"tool"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ExecutionError is the typed failure payload of a failed execution.
type ExecutionError struct {
	Type   ExecutionErrorType `json:"type"`
	Detail string             `json:"detail"`
}

// ExecutionOutput is what the execution stage hands to validation.
type ExecutionOutput struct {
	SpecID    string           `json:"spec_id"`
	Status    ExecutionStatus  `json:"status"`
	Artifacts []Artifact       `json:"artifacts,omitempty"`
	ToolLog   []ToolInvocation `json:"tool_log"`
	Error     *ExecutionError  `json:"error,omitempty"`
}

// Verdict is the validation stage's binary outcome.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// RequirementResult is per-requirement validation evidence.
type RequirementResult struct {
	RequirementID string `json:"requirement_id"`
	Satisfied     bool   `json:"satisfied"`
	Evidence      string `json:"evidence"`
}

// ConstraintResult is per-constraint validation evidence.
type ConstraintResult struct {
	Constraint string `json:"constraint"`
	Violated   bool   `json:"violated"`
	Evidence   string `json:"evidence"`
}

// ValidationSummary carries the numeric totals behind a verdict.
type ValidationSummary struct {
	RequirementsTotal     int `json:"requirements_total"`
	RequirementsSatisfied int `json:"requirements_satisfied"`
	ConstraintViolations  int `json:"constraint_violations"`
	ScopeViolations       int `json:"scope_violations"`
}

// ValidationReport is the mechanically derived validation verdict. The
// verdict is pass only when every requirement is satisfied and there are
// zero constraint or scope violations.
type ValidationReport struct {
	SpecID       string              `json:"spec_id"`
	Verdict      Verdict             `json:"verdict"`
	Requirements []RequirementResult `json:"requirements"`
	Constraints  []ConstraintResult  `json:"constraints"`
	Scope        []string            `json:"scope_violations,omitempty"`
	Summary      ValidationSummary   `json:"summary"`
}

// ComputeVerdict derives the verdict and summary from the evidence lists.
// Any single failing requirement, violated constraint, or scope violation
// forces fail.
func (r *ValidationReport) ComputeVerdict() {
	summary := ValidationSummary{
		RequirementsTotal: len(r.Requirements),
		ScopeViolations:   len(r.Scope),
	}
	for _, req := range r.Requirements {
		if req.Satisfied {
			summary.RequirementsSatisfied++
		}
	}
	for _, c := range r.Constraints {
		if c.Violated {
			summary.ConstraintViolations++
		}
	}
	r.Summary = summary
	if summary.RequirementsSatisfied == summary.RequirementsTotal &&
		summary.ConstraintViolations == 0 &&
		summary.ScopeViolations == 0 {
		r.Verdict = VerdictPass
		return
	}
	r.Verdict = VerdictFail
}
