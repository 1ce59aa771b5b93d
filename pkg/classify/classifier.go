// Package classify routes tasks to the pipeline stage that should handle
// them. Rules are evaluated in strict priority order, first match wins: a
// deterministic operator hint always beats heuristic pattern scoring.
package classify

import (
	"context"

	"github.com/castellanhq/castellan/pkg/audit"
	"github.com/castellanhq/castellan/pkg/core"
)

// Rule identifiers reported in classification results.
const (
	RuleHintTechnical   = "hint-technical"
	RuleHintProduct     = "hint-product"
	RuleHintAmbiguous   = "hint-ambiguous"
	RuleSignalTechnical = "signal-technical"
	RuleSignalBusiness  = "signal-business"
	RuleSignalNone      = "signal-none"
)

// Classifier makes routing decisions and records each one in the audit
// trail.
type Classifier struct {
	audit audit.Log
}

// New creates a classifier that logs decisions to log.
func New(log audit.Log) *Classifier {
	return &Classifier{audit: log}
}

// Classify decides a task's category and route. It never fails and always
// appends exactly one classification event.
func (c *Classifier) Classify(ctx context.Context, task *core.Task) core.ClassificationResult {
	result := decide(task)

	c.audit.Append(ctx, audit.NewEvent(audit.EventClassification, task.ID, "", map[string]any{
		"category":        string(result.Category),
		"route":           string(result.Route),
		"confidence":      string(result.Confidence),
		"rule_id":         result.RuleID,
		"technical_score": result.TechScore,
		"business_score":  result.BizScore,
	}))
	return result
}

func decide(task *core.Task) core.ClassificationResult {
	// An operator hint is authoritative and is never second-guessed by
	// pattern matching.
	switch task.Type {
	case core.TaskTypeTechnical:
		return core.ClassificationResult{
			Category:   core.CategoryTechnicalExplicit,
			Route:      core.RouteDev,
			Confidence: core.ConfidenceDeterministic,
			RuleID:     RuleHintTechnical,
		}
	case core.TaskTypeProduct:
		return core.ClassificationResult{
			Category:   core.CategoryBusiness,
			Route:      core.RouteProduct,
			Confidence: core.ConfidenceDeterministic,
			RuleID:     RuleHintProduct,
		}
	case core.TaskTypeAmbiguous:
		return core.ClassificationResult{
			Category:   core.CategoryAmbiguous,
			Route:      core.RouteProduct,
			Confidence: core.ConfidenceDeterministic,
			RuleID:     RuleHintAmbiguous,
		}
	}

	tech := score(task.Body, technicalRegexps)
	biz := score(task.Body, businessRegexps)

	// Asymmetric tie-break: technical needs a strict majority, business
	// wins on ties, and zero signal on both sides routes to
	// disambiguation. Uncertain input must never route to blind
	// execution.
	switch {
	case tech > biz:
		return core.ClassificationResult{
			Category:   core.CategoryTechnicalExplicit,
			Route:      core.RouteDev,
			Confidence: core.ConfidenceHeuristic,
			RuleID:     RuleSignalTechnical,
			TechScore:  tech,
			BizScore:   biz,
		}
	case biz >= 1:
		return core.ClassificationResult{
			Category:   core.CategoryBusiness,
			Route:      core.RouteProduct,
			Confidence: core.ConfidenceHeuristic,
			RuleID:     RuleSignalBusiness,
			TechScore:  tech,
			BizScore:   biz,
		}
	default:
		return core.ClassificationResult{
			Category:   core.CategoryAmbiguous,
			Route:      core.RouteProduct,
			Confidence: core.ConfidenceHeuristic,
			RuleID:     RuleSignalNone,
			TechScore:  tech,
			BizScore:   biz,
		}
	}
}
