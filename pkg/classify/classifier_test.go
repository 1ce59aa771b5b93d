package classify

import (
	"context"
	"testing"

	"github.com/castellanhq/castellan/pkg/audit"
	"github.com/castellanhq/castellan/pkg/core"
)

func classifyBody(t *testing.T, body string, hint core.TaskType) (core.ClassificationResult, *audit.MemoryLog) {
	t.Helper()
	log := audit.NewMemoryLog()
	c := New(log)
	task := core.NewTask(body, hint)
	return c.Classify(context.Background(), task), log
}

func TestClassify_HintPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		hint     core.TaskType
		body     string
		category core.TaskCategory
		route    core.Route
		rule     string
	}{
		{
			// A technical hint wins even over a body full of business vocabulary.
			name:     "technical hint beats business body",
			hint:     core.TaskTypeTechnical,
			body:     "We need stakeholder alignment on the roadmap for our customers",
			category: core.CategoryTechnicalExplicit,
			route:    core.RouteDev,
			rule:     RuleHintTechnical,
		},
		{
			name:     "product hint routes to disambiguation",
			hint:     core.TaskTypeProduct,
			body:     "Fix the panic in src/main.go",
			category: core.CategoryBusiness,
			route:    core.RouteProduct,
			rule:     RuleHintProduct,
		},
		{
			name:     "ambiguous hint routes to disambiguation",
			hint:     core.TaskTypeAmbiguous,
			body:     "Fix the panic in src/main.go",
			category: core.CategoryAmbiguous,
			route:    core.RouteProduct,
			rule:     RuleHintAmbiguous,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, _ := classifyBody(t, tc.body, tc.hint)
			if result.Category != tc.category {
				t.Errorf("category: expected %s, got %s", tc.category, result.Category)
			}
			if result.Route != tc.route {
				t.Errorf("route: expected %s, got %s", tc.route, result.Route)
			}
			if result.Confidence != core.ConfidenceDeterministic {
				t.Errorf("expected deterministic confidence, got %s", result.Confidence)
			}
			if result.RuleID != tc.rule {
				t.Errorf("rule: expected %s, got %s", tc.rule, result.RuleID)
			}
		})
	}
}

func TestClassify_TechnicalSignals(t *testing.T) {
	result, _ := classifyBody(t, "Refactor the login function in src/auth/login.ts", "")
	if result.Category != core.CategoryTechnicalExplicit {
		t.Errorf("expected technical_explicit, got %s", result.Category)
	}
	if result.Route != core.RouteDev {
		t.Errorf("expected dev route, got %s", result.Route)
	}
	if result.Confidence != core.ConfidenceHeuristic {
		t.Errorf("expected heuristic confidence, got %s", result.Confidence)
	}
	if result.TechScore <= result.BizScore {
		t.Errorf("expected strict technical majority, got tech=%d biz=%d", result.TechScore, result.BizScore)
	}
}

func TestClassify_BusinessSignals(t *testing.T) {
	result, _ := classifyBody(t, "We need to prioritize the onboarding experience for Q3", "")
	if result.Category != core.CategoryBusiness {
		t.Errorf("expected business, got %s", result.Category)
	}
	if result.Route != core.RouteProduct {
		t.Errorf("expected product route, got %s", result.Route)
	}
	if result.BizScore < 1 {
		t.Errorf("expected at least one business signal, got %d", result.BizScore)
	}
}

func TestClassify_ZeroSignalDefaultsToDisambiguation(t *testing.T) {
	result, _ := classifyBody(t, "Make it better", "")
	if result.TechScore != 0 || result.BizScore != 0 {
		t.Fatalf("expected zero scores, got tech=%d biz=%d", result.TechScore, result.BizScore)
	}
	if result.Category != core.CategoryAmbiguous {
		t.Errorf("expected ambiguous, got %s", result.Category)
	}
	if result.Route != core.RouteProduct {
		t.Errorf("zero-signal input must never route to execution, got %s", result.Route)
	}
	if result.Confidence != core.ConfidenceHeuristic {
		t.Errorf("expected heuristic confidence, got %s", result.Confidence)
	}
	if result.RuleID != RuleSignalNone {
		t.Errorf("expected %s, got %s", RuleSignalNone, result.RuleID)
	}
}

func TestClassify_TieGoesToBusiness(t *testing.T) {
	// Equal nonzero scores must route to disambiguation, never execution.
	tech := score("the users hit an error", technicalRegexps)
	biz := score("the users hit an error", businessRegexps)
	if tech == 0 || biz == 0 {
		t.Skipf("fixture no longer produces signal on both sides (tech=%d biz=%d)", tech, biz)
	}

	r, _ := classifyBody(t, "the users hit an error", "")
	if tech == biz && r.Route != core.RouteProduct {
		t.Errorf("tie must route to disambiguation, got %s", r.Route)
	}
	if r.Route == core.RouteDev && tech <= biz {
		t.Errorf("execution route requires strict technical majority (tech=%d biz=%d)", tech, biz)
	}
}

func TestClassify_PatternCountsOncePerPattern(t *testing.T) {
	once := score("error", technicalRegexps)
	many := score("error error error error", technicalRegexps)
	if once != many {
		t.Errorf("a pattern must contribute at most 1: once=%d many=%d", once, many)
	}
}

func TestClassify_AppendsOneAuditEvent(t *testing.T) {
	log := audit.NewMemoryLog()
	c := New(log)
	task := core.NewTask("Make it better", "")
	c.Classify(context.Background(), task)

	events, err := log.List(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}
	if events[0].Type != audit.EventClassification {
		t.Errorf("expected classification event, got %s", events[0].Type)
	}
	if events[0].Payload["rule_id"] != RuleSignalNone {
		t.Errorf("expected rule id in payload, got %v", events[0].Payload["rule_id"])
	}
}
