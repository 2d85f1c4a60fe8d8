// Package report renders judging results as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/okian/rcajudge/internal/domain/types"
)

// Format selects the serialization of a report.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Renderer is a report that knows its plain-text layout.
type Renderer interface {
	RenderText(w io.Writer) error
}

// Write serializes v to w in the requested format.
func Write(w io.Writer, format Format, v Renderer) error {
	switch format {
	case FormatText, "":
		return v.RenderText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Leaderboard is the outcome of a multi-team judging run.
type Leaderboard struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	Mode        string        `json:"mode" yaml:"mode"`
	Faults      int           `json:"faults" yaml:"faults"`
	Entries     []types.Entry `json:"entries" yaml:"entries"`
	Excluded    []string      `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Diagnostics []string      `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// RenderText writes an aligned rank table.
func (l Leaderboard) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "# run %s, mode %s, %d faults\n", l.RunID, l.Mode, l.Faults)
	fmt.Fprintln(tw, "RANK\tTEAM\tSCORE")
	for _, e := range l.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Rank, e.TeamID, formatFloat(e.Score))
	}
	for _, team := range l.Excluded {
		fmt.Fprintf(tw, "-\t%s\texcluded\n", team)
	}
	return tw.Flush()
}

// FaultGrade is the graded outcome of one fault.
type FaultGrade struct {
	FaultID  string  `json:"fault_id" yaml:"fault_id"`
	Answered bool    `json:"answered" yaml:"answered"`
	Rank     int     `json:"rank" yaml:"rank"` // 1-based rank of the first correct guess, 0 if none
	Points   float64 `json:"points" yaml:"points"`
}

// GradeSheet is the outcome of grading one result file.
type GradeSheet struct {
	Faults      int          `json:"faults" yaml:"faults"`
	Answered    int          `json:"answered" yaml:"answered"`
	Total       float64      `json:"total" yaml:"total"`
	Mean        float64      `json:"mean" yaml:"mean"`
	Details     []FaultGrade `json:"details" yaml:"details"`
	Diagnostics []string     `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// RenderText writes the per-fault table followed by the totals.
func (g GradeSheet) RenderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "# %d faults, %d answered\n", g.Faults, g.Answered)
	fmt.Fprintln(tw, "FAULT\tRANK\tPOINTS")
	for _, d := range g.Details {
		rank := "-"
		if d.Rank > 0 {
			rank = strconv.Itoa(d.Rank)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.FaultID, rank, formatFloat(d.Points))
	}
	fmt.Fprintf(tw, "Total:\t\t%s\n", formatFloat(g.Total))
	fmt.Fprintf(tw, "Mean:\t\t%s\n", formatFloat(g.Mean))
	return tw.Flush()
}

// TeamScore is the single-team time score: mean cost per fault.
type TeamScore struct {
	Source          string   `json:"source" yaml:"source"`
	Faults          int      `json:"faults" yaml:"faults"`
	Solved          int      `json:"solved" yaml:"solved"`
	MeanCostSeconds float64  `json:"mean_cost_seconds" yaml:"mean_cost_seconds"`
	Diagnostics     []string `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// MinutesPerFault converts the mean cost to minutes.
func (s TeamScore) MinutesPerFault() float64 { return s.MeanCostSeconds / 60 }

// RenderText writes the classic one-line summary.
func (s TeamScore) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s: %.04f minutes / fault (%d of %d solved)\n",
		s.Source, s.MinutesPerFault(), s.Solved, s.Faults)
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
