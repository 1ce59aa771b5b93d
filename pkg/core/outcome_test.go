package core

import "testing"

func passingReport(n int) *ValidationReport {
	report := &ValidationReport{SpecID: "spec-x"}
	for i := 0; i < n; i++ {
		report.Requirements = append(report.Requirements, RequirementResult{
			RequirementID: "req", Satisfied: true, Evidence: "ok",
		})
	}
	return report
}

func TestComputeVerdict_AllPass(t *testing.T) {
	report := passingReport(3)
	report.Constraints = []ConstraintResult{{Constraint: "c", Violated: false}}
	report.ComputeVerdict()

	if report.Verdict != VerdictPass {
		t.Errorf("expected pass, got %s", report.Verdict)
	}
	if report.Summary.RequirementsSatisfied != 3 || report.Summary.RequirementsTotal != 3 {
		t.Errorf("bad summary: %+v", report.Summary)
	}
}

func TestComputeVerdict_SingleRequirementFailureForcesFail(t *testing.T) {
	for failIdx := 0; failIdx < 5; failIdx++ {
		report := passingReport(5)
		report.Requirements[failIdx].Satisfied = false
		report.ComputeVerdict()
		if report.Verdict != VerdictFail {
			t.Errorf("requirement %d failing must force overall fail", failIdx)
		}
	}
}

func TestComputeVerdict_ConstraintViolationForcesFail(t *testing.T) {
	report := passingReport(2)
	report.Constraints = []ConstraintResult{{Constraint: "c", Violated: true, Evidence: "seen"}}
	report.ComputeVerdict()
	if report.Verdict != VerdictFail {
		t.Errorf("constraint violation must force fail, got %s", report.Verdict)
	}
	if report.Summary.ConstraintViolations != 1 {
		t.Errorf("bad summary: %+v", report.Summary)
	}
}

func TestComputeVerdict_ScopeViolationForcesFail(t *testing.T) {
	report := passingReport(2)
	report.Scope = []string{"tool fetch_url invoked outside the resolved scope"}
	report.ComputeVerdict()
	if report.Verdict != VerdictFail {
		t.Errorf("scope violation must force fail, got %s", report.Verdict)
	}
}

func TestComputeVerdict_EmptyReportPasses(t *testing.T) {
	report := &ValidationReport{}
	report.ComputeVerdict()
	if report.Verdict != VerdictPass {
		t.Errorf("vacuously true report should pass, got %s", report.Verdict)
	}
}

func TestIntentSpecValidate(t *testing.T) {
	spec := &IntentSpec{
		ID:        "spec-1",
		Objective: "do the thing",
		Requirements: []Requirement{
			{ID: "req-1", Description: "d", Verification: "v"},
		},
		OutOfScope: []string{"everything else"},
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*IntentSpec)
	}{
		{"nil spec", nil},
		{"empty objective", func(s *IntentSpec) { s.Objective = "" }},
		{"no requirements", func(s *IntentSpec) { s.Requirements = nil }},
		{"requirement without verification", func(s *IntentSpec) { s.Requirements[0].Verification = "" }},
		{"no out of scope", func(s *IntentSpec) { s.OutOfScope = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.mutate == nil {
				var nilSpec *IntentSpec
				if err := nilSpec.Validate(); err == nil {
					t.Error("expected error")
				}
				return
			}
			bad := &IntentSpec{
				ID:        "spec-1",
				Objective: "do the thing",
				Requirements: []Requirement{
					{ID: "req-1", Description: "d", Verification: "v"},
				},
				OutOfScope: []string{"everything else"},
			}
			tc.mutate(bad)
			if err := bad.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
