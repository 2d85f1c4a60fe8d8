package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/okian/rcajudge/internal/domain/types"
)

func sampleLeaderboard() Leaderboard {
	return Leaderboard{
		RunID:  "run-1",
		Mode:   "rank",
		Faults: 2,
		Entries: []types.Entry{
			{Rank: 1, TeamID: "alpha", Score: 19},
			{Rank: 2, TeamID: "beta", Score: 18.5},
		},
		Excluded: []string{"gamma"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{in: "text", want: FormatText},
		{in: " JSON ", want: FormatJSON},
		{in: "yaml", want: FormatYAML},
		{in: "yml", want: FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLeaderboardText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sampleLeaderboard()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "# run run-1, mode rank, 2 faults", lines[0])
	assert.Equal(t, []string{"RANK", "TEAM", "SCORE"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "alpha", "19"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"2", "beta", "18.5"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"-", "gamma", "excluded"}, strings.Fields(lines[4]))
}

func TestLeaderboardJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleLeaderboard()))

	var got struct {
		RunID   string `json:"run_id"`
		Entries []struct {
			Rank   int     `json:"rank"`
			TeamID string  `json:"team_id"`
			Score  float64 `json:"score"`
		} `json:"entries"`
		Diagnostics []string `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "beta", got.Entries[1].TeamID)
	assert.Equal(t, 18.5, got.Entries[1].Score)
	assert.NotContains(t, buf.String(), "diagnostics", "empty diagnostics omitted")
}

func TestLeaderboardYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleLeaderboard()))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "rank", got["mode"])
	entries, ok := got["entries"].([]any)
	require.True(t, ok)
	first, ok := entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alpha", first["team_id"])
	assert.Equal(t, 1, first["rank"])
}

func TestGradeSheetText(t *testing.T) {
	sheet := GradeSheet{
		Faults:   4,
		Answered: 3,
		Total:    120,
		Mean:     30,
		Details: []FaultGrade{
			{FaultID: "1", Answered: true},
			{FaultID: "2", Answered: true, Rank: 1, Points: 100},
			{FaultID: "3", Answered: true, Rank: 2, Points: 20},
			{FaultID: "4"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sheet))

	out := buf.String()
	assert.Contains(t, out, "# 4 faults, 3 answered")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"1", "-", "0"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"3", "2", "20"}, strings.Fields(lines[4]))
	assert.Equal(t, []string{"Total:", "120"}, strings.Fields(lines[6]))
	assert.Equal(t, []string{"Mean:", "30"}, strings.Fields(lines[7]))
}

func TestTeamScoreText(t *testing.T) {
	score := TeamScore{Source: "team.log", Faults: 4, Solved: 3, MeanCostSeconds: 90}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, score))
	assert.Equal(t, "team.log: 1.5000 minutes / fault (3 of 4 solved)\n", buf.String())
	assert.Equal(t, 1.5, score.MinutesPerFault())
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("csv"), sampleLeaderboard())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
