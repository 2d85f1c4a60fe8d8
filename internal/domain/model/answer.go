package model

// Answer is a ground-truth entry of the graded variant: the fault is pinned
// to one category and host, and any of the candidate metrics is accepted.
// An empty metric stands for a fault without a specific metric (for example
// a network error).
type Answer struct {
	FaultID    string
	Category   string
	Host       string
	Candidates IdentifierSet
}

// NewAnswer builds an Answer from its raw parts.
func NewAnswer(faultID, category, host string, metrics ...string) Answer {
	ids := make([]Identifier, len(metrics))
	for i, m := range metrics {
		ids[i] = Identifier{Category: category, Host: host, Metric: m}
	}
	return Answer{
		FaultID:    faultID,
		Category:   category,
		Host:       host,
		Candidates: NewIdentifierSet(ids...),
	}
}

// IsCorrect reports whether guess names the answer's category and host and
// one of its candidate metrics.
func (a Answer) IsCorrect(guess Identifier) bool {
	return a.Candidates.Contains(guess)
}
