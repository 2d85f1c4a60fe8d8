package aggregate

import (
	"math"
	"sort"

	"github.com/okian/rcajudge/internal/domain/types"
)

// DefaultMaxPoints is awarded to the best team of a fault.
const DefaultMaxPoints = 10

// TeamCost is one team's cost for a single fault.
type TeamCost struct {
	TeamID string
	Cost   float64
}

// DenseRank awards competition points for one fault. Teams are ordered by
// cost with a stable sort; the best receives maxPoints, and the points drop
// by one for every team consumed. Teams tied on cost share the points of the
// first team of their group. Teams at or above sentinel, and every team once
// the points reach zero, receive nothing.
func DenseRank(turn []TeamCost, maxPoints, sentinel float64) map[string]float64 {
	sorted := make([]TeamCost, len(turn))
	copy(sorted, turn)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cost < sorted[j].Cost })

	points := make(map[string]float64, len(sorted))
	for _, tc := range sorted {
		points[tc.TeamID] = 0
	}

	grade := maxPoints
	for j := 0; j < len(sorted) && grade > 0; {
		groupCost := sorted[j].Cost
		if groupCost >= sentinel {
			break
		}
		groupPoints := grade
		for j < len(sorted) && sorted[j].Cost == groupCost {
			points[sorted[j].TeamID] = groupPoints
			grade--
			j++
		}
	}
	return points
}

// RankPoints sums DenseRank points over every fault. Higher is better.
type RankPoints struct {
	maxPoints float64
	sentinel  float64
}

// NewRankPoints returns a RankPoints policy. Non-positive arguments fall back
// to DefaultMaxPoints and an unreachable sentinel respectively.
func NewRankPoints(maxPoints, sentinel float64) RankPoints {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	if sentinel <= 0 {
		sentinel = math.MaxFloat64
	}
	return RankPoints{maxPoints: maxPoints, sentinel: sentinel}
}

// Name implements Policy.
func (RankPoints) Name() string { return ModeRank }

// HigherIsBetter implements Policy.
func (RankPoints) HigherIsBetter() bool { return true }

// Aggregate implements Policy.
func (p RankPoints) Aggregate(in Input) (types.ScoreTable, error) {
	size, err := FaultCount(in)
	if err != nil {
		return nil, err
	}

	table := types.NewScoreTable(in.Teams)
	turn := make([]TeamCost, len(in.Teams))
	for i := 0; i < size; i++ {
		for k, team := range in.Teams {
			turn[k] = TeamCost{TeamID: team, Cost: in.Scores[team][i]}
		}
		for team, pts := range DenseRank(turn, p.maxPoints, p.sentinel) {
			table[team] += pts
		}
	}
	return table, nil
}
