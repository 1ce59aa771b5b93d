package core

// TaskCategory is the classifier's verdict about a task.
type TaskCategory string

const (
	CategoryTechnicalExplicit TaskCategory = "technical_explicit"
	CategoryBusiness          TaskCategory = "business"
	CategoryAmbiguous         TaskCategory = "ambiguous"
)

// Route names the downstream stage that handles a task next.
type Route string

const (
	// RouteProduct sends the task through the disambiguation stage.
	RouteProduct Route = "product"
	// RouteDev sends the task directly to the execution stage.
	RouteDev Route = "dev"
)

// Confidence distinguishes hint-driven routing from pattern-driven routing.
type Confidence string

const (
	ConfidenceDeterministic Confidence = "deterministic"
	ConfidenceHeuristic     Confidence = "heuristic"
)

// ClassificationResult records a routing decision and the rule that made it.
type ClassificationResult struct {
	Category   TaskCategory
	Route      Route
	Confidence Confidence
	RuleID     string
	TechScore  int
	BizScore   int
}
