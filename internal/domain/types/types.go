// Package types contains common types used across the application
package types

import "sort"

// Entry represents a leaderboard entry
type Entry struct {
	Rank   int     `json:"rank" yaml:"rank"`
	TeamID string  `json:"team_id" yaml:"team_id"`
	Score  float64 `json:"score" yaml:"score"`
}

// ScoreTable maps team ids to their final score for one judging run.
type ScoreTable map[string]float64

// NewScoreTable returns a table with every roster team at zero.
func NewScoreTable(roster []string) ScoreTable {
	t := make(ScoreTable, len(roster))
	for _, team := range roster {
		t[team] = 0
	}
	return t
}

// Teams returns the team ids in lexical order.
func (t ScoreTable) Teams() []string {
	teams := make([]string, 0, len(t))
	for team := range t {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}
