package classify

import "regexp"

// Technical signals: file paths and extensions, code identifiers,
// error/stack-trace vocabulary, VCS and build-tool verbs.
var technicalPatterns = []string{
	// File paths and extensions
	`[\w./-]+\.(go|ts|tsx|js|jsx|py|rs|java|rb|c|cpp|h|sql|sh|ya?ml|json|toml|css|html)\b`,
	`(?i)\b(src|lib|pkg|cmd|internal|test|tests)/[\w./-]+`,
	// Code identifiers
	`\b[a-z]+[A-Z]\w*\b`,
	`\b\w+_\w+\(`,
	`\b\w+\(\)`,
	`(?i)\b(function|func|method|class|struct|interface|module|endpoint|api|database|schema|query)\b`,
	// Error and stack-trace vocabulary
	`(?i)\b(error|exception|stack ?trace|panic|segfault|traceback|null pointer|undefined|NaN)\b`,
	`(?i)\b(bug|crash|failing|broken|regression)\b`,
	// VCS and build-tool verbs
	`(?i)\b(refactor|rebase|merge|commit|cherry-pick|revert|branch)\b`,
	`(?i)\b(compile|build|deploy|lint|migrate|install|upgrade)\b`,
	`(?i)\b(git|docker|npm|cargo|pip|gradle|makefile|ci/cd|pipeline)\b`,
}

// Business signals: user/customer-need vocabulary, prioritization and
// trade-off vocabulary, stakeholder vocabulary.
var businessPatterns = []string{
	// User and customer need vocabulary
	`(?i)\b(users?|customers?|clients?|visitors?|audience)\b`,
	`(?i)\b(need|want|expect|demand|experience|journey|onboarding|retention|churn)\b`,
	`(?i)\b(feature|product|launch|release plan|roadmap|mvp)\b`,
	// Prioritization and trade-off vocabulary
	`(?i)\b(prioriti[sz]e|priority|trade-?off|scope|timeline|deadline|quarter|q[1-4])\b`,
	`(?i)\b(goal|objective|okr|kpi|metric|impact|value|revenue|growth)\b`,
	// Stakeholder vocabulary
	`(?i)\b(stakeholders?|leadership|executives?|marketing|sales|legal|compliance)\b`,
	`(?i)\b(meeting|alignment|buy-?in|sign-?off|approval)\b`,
}

var (
	technicalRegexps = compileAll(technicalPatterns)
	businessRegexps  = compileAll(businessPatterns)
)

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// score counts how many patterns match anywhere in the body. A pattern
// that matches contributes exactly 1, not its occurrence count.
func score(body string, patterns []*regexp.Regexp) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(body) {
			n++
		}
	}
	return n
}
