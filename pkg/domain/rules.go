package domain

// Severity captures plan check outcomes.
type Severity string

// Plan checks are advisory; none of these block a mutation.
const (
	// SeverityWarn flags a likely data problem the user should look at.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed plan check.
type Violation struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	PlanID   string   `json:"planId,omitempty"`
	BlockID  string   `json:"blockId,omitempty"`
}

// Result aggregates violations from the checks engine.
type Result struct {
	Violations []Violation `json:"violations"`
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasWarnings reports whether any violation is at warn severity.
func (r Result) HasWarnings() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityWarn {
			return true
		}
	}
	return false
}
