package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Requirement is one mechanically checkable obligation in an IntentSpec.
type Requirement struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	Verification string `json:"verification"`
}

// Assumption records something the spec takes for granted and where the
// belief came from.
type Assumption struct {
	Statement string `json:"statement"`
	Source    string `json:"source"`
}

// IntentSpec is the immutable contract that gates the execution stage.
// A correction never edits a spec in place; it produces a new spec whose
// Supersedes field references the old one.
type IntentSpec struct {
	ID           string        `json:"id"`
	Objective    string        `json:"objective"`
	Requirements []Requirement `json:"requirements"`
	Constraints  []string      `json:"constraints"`
	OutOfScope   []string      `json:"out_of_scope"`
	Assumptions  []Assumption  `json:"assumptions"`
	ContextRefs  []string      `json:"context_refs"`
	Supersedes   string        `json:"supersedes,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewSpecID generates a spec identifier.
func NewSpecID() string {
	return "spec-" + uuid.NewString()[:8]
}

// Validate reports whether the spec satisfies its structural minimums:
// a non-empty objective, at least one requirement with a verification
// clause, and at least one out-of-scope entry.
func (s *IntentSpec) Validate() error {
	if s == nil {
		return fmt.Errorf("spec is nil")
	}
	if s.Objective == "" {
		return fmt.Errorf("spec %s: objective is required", s.ID)
	}
	if len(s.Requirements) == 0 {
		return fmt.Errorf("spec %s: at least one requirement is required", s.ID)
	}
	for _, req := range s.Requirements {
		if req.ID == "" || req.Verification == "" {
			return fmt.Errorf("spec %s: requirement %q missing id or verification", s.ID, req.Description)
		}
	}
	if len(s.OutOfScope) == 0 {
		return fmt.Errorf("spec %s: at least one out-of-scope entry is required", s.ID)
	}
	return nil
}
