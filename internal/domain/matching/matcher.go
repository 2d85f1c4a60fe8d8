// Package matching pairs ground-truth faults with the submissions of one team.
//
// A Matcher is immutable and may be shared; all progress lives in a Window
// value that the caller threads through successive calls. Replaying the same
// faults with a fresh Window always yields the same results.
package matching

import (
	"sort"

	"github.com/okian/rcajudge/internal/domain/model"
)

// Default matcher configuration constants.
const (
	DefaultQuota  = 24
	DefaultWindow = 600.0
)

// Mode selects which in-window submissions Find returns.
type Mode string

// Supported collect modes.
const (
	// CollectAll returns every submission consumed inside the window.
	CollectAll Mode = "all"
	// CollectLast returns only the last submission consumed inside the window.
	CollectLast Mode = "last"
)

// Window is the per-team matching state: the remaining quota and the index
// of the next unconsumed submission. Quota never grows and Cursor never
// moves backwards.
type Window struct {
	Quota  int
	Cursor int
}

// NewWindow returns the initial state for a team. Negative quotas clamp to 0.
func NewWindow(quota int) Window {
	if quota < 0 {
		quota = 0
	}
	return Window{Quota: quota}
}

// Exhausted reports whether the quota is used up.
func (w Window) Exhausted() bool { return w.Quota <= 0 }

// Step describes what one Find call did.
type Step struct {
	// Submissions are the answers attributed to the fault.
	Submissions []model.Submission
	// Skipped counts stale submissions discarded before the fault, each
	// charged against the quota.
	Skipped int
	// Consumed counts submissions taken from inside the window.
	Consumed int
}

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithWindow sets the response window in seconds.
func WithWindow(seconds float64) Option {
	return func(m *Matcher) {
		if seconds >= 0 {
			m.window = seconds
		}
	}
}

// WithMode sets the collect mode.
func WithMode(mode Mode) Option {
	return func(m *Matcher) {
		if mode == CollectAll || mode == CollectLast {
			m.mode = mode
		}
	}
}

// Matcher walks one team's submissions in timestamp order.
type Matcher struct {
	subs   []model.Submission
	window float64
	mode   Mode
}

// New creates a Matcher over a copy of subs sorted by timestamp. The sort is
// stable so records sharing a timestamp keep their input order.
func New(subs []model.Submission, opts ...Option) *Matcher {
	sorted := make([]model.Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })

	m := &Matcher{
		subs:   sorted,
		window: DefaultWindow,
		mode:   CollectAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Len returns the number of submissions.
func (m *Matcher) Len() int { return len(m.subs) }

// Skip moves past every submission before t without charging quota. It is
// used once per team to ignore answers sent before the competition started.
func (m *Matcher) Skip(w Window, t float64) (Window, int) {
	n := 0
	for w.Cursor < len(m.subs) && m.subs[w.Cursor].At < t {
		w.Cursor++
		n++
	}
	return w, n
}

// Advance discards every submission before t, charging one unit of quota
// each. It stops as soon as the quota reaches zero.
func (m *Matcher) Advance(w Window, t float64) (Window, int) {
	n := 0
	for w.Quota > 0 && w.Cursor < len(m.subs) && m.subs[w.Cursor].At < t {
		w.Cursor++
		w.Quota--
		n++
	}
	return w, n
}

// Find returns the submissions answering a fault raised at t, together with
// the updated window. Submissions in [t, t+window] are consumed in order
// while quota remains.
func (m *Matcher) Find(w Window, t float64) (Step, Window) {
	var step Step
	w, step.Skipped = m.Advance(w, t)

	var collected []model.Submission
	for w.Quota > 0 && w.Cursor < len(m.subs) && m.subs[w.Cursor].At <= t+m.window {
		collected = append(collected, m.subs[w.Cursor])
		w.Cursor++
		w.Quota--
	}
	step.Consumed = len(collected)

	if m.mode == CollectLast && len(collected) > 0 {
		collected = collected[len(collected)-1:]
	}
	step.Submissions = collected
	return step, w
}
