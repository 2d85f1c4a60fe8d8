package matching

import "github.com/okian/rcajudge/internal/domain/model"

// Outcome is the result of matching a team against a full fault sequence.
type Outcome struct {
	// Results holds, per fault and in fault order, one MatchResult for every
	// submission attributed to that fault.
	Results [][]model.MatchResult
	// Window is the final state after the last fault.
	Window Window
	// Skipped and Consumed total the per-fault Step counters.
	Skipped  int
	Consumed int
	// Exhausted is the index of the fault at which the quota ran out, or -1.
	Exhausted int
}

// Run matches faults, which must be sorted by timestamp, starting from w.
func (m *Matcher) Run(faults []model.FaultEvent, w Window) Outcome {
	out := Outcome{
		Results:   make([][]model.MatchResult, len(faults)),
		Exhausted: -1,
	}
	for i, fault := range faults {
		var step Step
		step, w = m.Find(w, fault.At)
		out.Skipped += step.Skipped
		out.Consumed += step.Consumed

		results := make([]model.MatchResult, len(step.Submissions))
		for j, sub := range step.Submissions {
			results[j] = model.Evaluate(fault, sub)
		}
		out.Results[i] = results

		if out.Exhausted < 0 && w.Exhausted() {
			out.Exhausted = i
		}
	}
	out.Window = w
	return out
}
