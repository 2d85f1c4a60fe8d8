// Package aggregate combines per-fault scores into one score per team.
//
// All policies share one input shape: for every team in roster order, one
// score per fault in fault order. Cost-based policies expect lower-is-better
// time costs; grade-based policies expect higher-is-better points.
package aggregate

import (
	"fmt"

	"github.com/okian/rcajudge/internal/domain/types"
)

// Scoring modes accepted by ForMode.
const (
	ModeRank   = "rank"
	ModeFScore = "fscore"
	ModeGrade  = "grade"
)

// Input is the per-team, per-fault score matrix of one judging run.
type Input struct {
	// Teams lists team ids in roster order.
	Teams []string
	// Scores holds one score per fault for every team in Teams.
	Scores map[string][]float64
}

// Policy turns an Input into the final leaderboard.
type Policy interface {
	// Name returns the scoring mode implemented by the policy.
	Name() string
	// HigherIsBetter reports the ordering of the resulting table.
	HigherIsBetter() bool
	// Aggregate computes the score table.
	Aggregate(in Input) (types.ScoreTable, error)
}

// FaultCount returns the common number of faults across teams. Teams with a
// different count, or with no scores at all, make the input inconsistent.
func FaultCount(in Input) (int, error) {
	size := -1
	for _, team := range in.Teams {
		scores, ok := in.Scores[team]
		if !ok {
			return 0, fmt.Errorf("team %q has no scores: %w", team, ErrSizeMismatch)
		}
		if size < 0 {
			size = len(scores)
			continue
		}
		if len(scores) != size {
			return 0, fmt.Errorf("team %q has %d faults, expected %d: %w", team, len(scores), size, ErrSizeMismatch)
		}
	}
	if size < 0 {
		size = 0
	}
	return size, nil
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// ForMode returns the policy for a scoring mode.
func ForMode(mode string, maxPoints, sentinel float64) (Policy, error) {
	switch mode {
	case ModeRank:
		return NewRankPoints(maxPoints, sentinel), nil
	case ModeFScore:
		return MeanFScore{}, nil
	case ModeGrade:
		return MeanGrade{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", mode, ErrUnknownMode)
	}
}

// MeanFScore averages each team's per-fault costs. Lower is better.
type MeanFScore struct{}

// Name implements Policy.
func (MeanFScore) Name() string { return ModeFScore }

// HigherIsBetter implements Policy.
func (MeanFScore) HigherIsBetter() bool { return false }

// Aggregate implements Policy.
func (MeanFScore) Aggregate(in Input) (types.ScoreTable, error) {
	return meanTable(in)
}

// MeanGrade averages each team's per-fault point grades. Higher is better.
type MeanGrade struct{}

// Name implements Policy.
func (MeanGrade) Name() string { return ModeGrade }

// HigherIsBetter implements Policy.
func (MeanGrade) HigherIsBetter() bool { return true }

// Aggregate implements Policy.
func (MeanGrade) Aggregate(in Input) (types.ScoreTable, error) {
	return meanTable(in)
}

func meanTable(in Input) (types.ScoreTable, error) {
	if _, err := FaultCount(in); err != nil {
		return nil, err
	}
	table := types.NewScoreTable(in.Teams)
	for _, team := range in.Teams {
		m, err := Mean(in.Scores[team])
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", team, err)
		}
		table[team] = m
	}
	return table, nil
}
