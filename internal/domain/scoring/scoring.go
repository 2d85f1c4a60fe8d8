// Package scoring converts match outcomes into per-fault costs and grades.
//
// Costs follow time-to-detect semantics: lower is better and an unsolved
// fault costs the miss penalty. Grades follow points semantics: higher is
// better and an unsolved fault is worth zero.
package scoring

import (
	"math"

	"github.com/okian/rcajudge/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultBeta         = 0.5
	DefaultMissPenalty  = 6 * 60 * 60 // 6 hours
	DefaultRoundBase    = 10
	DefaultRoundFloor   = 0
	DefaultMinPrecision = 0.5
)

// Combination selects how precision and recall adjust the elapsed time.
type Combination string

// Supported combinations.
const (
	CombineFBeta  Combination = "fbeta"
	CombineRecall Combination = "recall"
	CombineMean   Combination = "mean"
)

// FBeta computes the F-beta score. Beta is squared once at construction.
type FBeta struct {
	beta2 float64
}

// NewFBeta returns an F-beta calculator for the given beta.
func NewFBeta(beta float64) FBeta {
	return FBeta{beta2: beta * beta}
}

// Calculate returns F-beta for correct answers among submitted ones against
// truth ground-truth candidates. Any zero count yields exactly 0.
func (f FBeta) Calculate(correct, submitted, truth int) float64 {
	if correct == 0 || submitted == 0 || truth == 0 {
		return 0
	}
	precision := float64(correct) / float64(submitted)
	recall := float64(correct) / float64(truth)
	return (1 + f.beta2) * precision * recall / (f.beta2*precision + recall)
}

// Trunc rounds value up to a multiple of base and clamps it at minimum.
// A non-positive base disables rounding.
func Trunc(value, base, minimum float64) float64 {
	if base > 0 {
		value = math.Ceil(value/base) * base
	}
	if value < minimum {
		value = minimum
	}
	return value
}

// Option applies a configuration option to the TimeScorer.
type Option func(*TimeScorer)

// WithBeta sets beta for the F-beta combination.
func WithBeta(beta float64) Option {
	return func(s *TimeScorer) {
		if beta > 0 {
			s.fbeta = NewFBeta(beta)
		}
	}
}

// WithCombination sets how precision and recall are combined.
func WithCombination(c Combination) Option {
	return func(s *TimeScorer) {
		switch c {
		case CombineFBeta, CombineRecall, CombineMean:
			s.combination = c
		}
	}
}

// WithMinPrecision sets the precision a match needs to count as confident.
func WithMinPrecision(p float64) Option {
	return func(s *TimeScorer) {
		if p >= 0 && p <= 1 {
			s.minPrecision = p
		}
	}
}

// WithMissPenalty sets the cost of an unsolved fault, in seconds.
func WithMissPenalty(seconds float64) Option {
	return func(s *TimeScorer) {
		if seconds > 0 {
			s.missPenalty = seconds
		}
	}
}

// WithRounding sets the rounding base and floor applied to costs.
func WithRounding(base, floor float64) Option {
	return func(s *TimeScorer) {
		if base >= 0 {
			s.roundBase = base
		}
		s.roundFloor = floor
	}
}

// TimeScorer turns a MatchResult into a time-adjusted cost in seconds.
type TimeScorer struct {
	combination  Combination
	fbeta        FBeta
	minPrecision float64
	missPenalty  float64
	roundBase    float64
	roundFloor   float64
}

// NewTimeScorer creates a scorer with configuration options.
func NewTimeScorer(opts ...Option) *TimeScorer {
	s := &TimeScorer{
		combination:  CombineFBeta,
		fbeta:        NewFBeta(DefaultBeta),
		minPrecision: DefaultMinPrecision,
		missPenalty:  DefaultMissPenalty,
		roundBase:    DefaultRoundBase,
		roundFloor:   DefaultRoundFloor,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// MissPenalty returns the cost of an unsolved fault.
func (s *TimeScorer) MissPenalty() float64 { return s.missPenalty }

// Factor returns the accuracy factor the elapsed time is divided by.
func (s *TimeScorer) Factor(r model.MatchResult) float64 {
	if r.Correct == 0 || r.Submitted == 0 || r.Truth == 0 {
		return 0
	}
	precision := float64(r.Correct) / float64(r.Submitted)
	recall := float64(r.Correct) / float64(r.Truth)
	switch s.combination {
	case CombineRecall:
		return recall
	case CombineMean:
		return (precision + recall) / 2
	default:
		return s.fbeta.Calculate(r.Correct, r.Submitted, r.Truth)
	}
}

// Cost scores one match. Matches without a correct identifier, or below the
// precision gate, cost the miss penalty. Under the F-beta combination the
// adjusted time is further shared among the correct identifiers.
func (s *TimeScorer) Cost(r model.MatchResult) float64 {
	if r.Submitted == 0 || r.Correct == 0 {
		return s.missPenalty
	}
	if float64(r.Correct)/float64(r.Submitted) < s.minPrecision {
		return s.missPenalty
	}
	factor := s.Factor(r)
	if factor <= 0 {
		return s.missPenalty
	}

	cost := r.Offset / factor
	if s.combination == CombineFBeta {
		cost /= float64(r.Correct)
	}
	return Trunc(cost, s.roundBase, s.roundFloor)
}

// Costs scores every match attributed to one fault.
func (s *TimeScorer) Costs(results []model.MatchResult) []float64 {
	costs := make([]float64, len(results))
	for i, r := range results {
		costs[i] = s.Cost(r)
	}
	return costs
}

// FaultCost scores the matches of one fault and reduces them with sel.
func (s *TimeScorer) FaultCost(sel Selector, results []model.MatchResult) float64 {
	return Select(sel, s.Costs(results), s.missPenalty)
}
