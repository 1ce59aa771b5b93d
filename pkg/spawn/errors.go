package spawn

import "fmt"

// ErrorCode discriminates spawn failures.
type ErrorCode string

const (
	ErrManifestInvalid     ErrorCode = "manifest_invalid"
	ErrSystemPromptMissing ErrorCode = "system_prompt_missing"
	ErrPermissionConflict  ErrorCode = "permission_conflict"
	ErrScopeViolation      ErrorCode = "scope_violation"
)

// Error is the structured failure outcome of a spawn attempt. Spawning
// never panics and never returns both an agent and an error.
type Error struct {
	Code   ErrorCode `json:"code"`
	Role   string    `json:"role"`
	Detail string    `json:"detail"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("spawn %s: %s: %s", e.Role, e.Code, e.Detail)
}

func newError(code ErrorCode, role, format string, args ...any) *Error {
	return &Error{Code: code, Role: role, Detail: fmt.Sprintf(format, args...)}
}
