package models

// Classification is the outcome of a quality rule.
type Classification string

const (
	Useful    Classification = "USEFUL"
	Gibberish Classification = "GIBBERISH"
	// Undecided is a table-level signal for 1-2 meaningful words. It never reaches page output.
	Undecided Classification = "UNDECIDED"
)

// Verdict is the result of classifying a table or a page.
type Verdict struct {
	Classification Classification `json:"classification" yaml:"classification"`
	Reason         string         `json:"reason" yaml:"reason"`
	// Rule names the predicate that fired, e.g. "priority-content" or "outside-words".
	Rule    string         `json:"rule" yaml:"rule"`
	Metrics map[string]any `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// IsUseful reports whether the verdict is USEFUL.
func (v Verdict) IsUseful() bool {
	return v.Classification == Useful
}
