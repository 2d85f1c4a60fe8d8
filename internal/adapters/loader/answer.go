// Package loader reads competition inputs from disk: ground truth, team
// submission logs, rosters, and the graded variant's JSON files.
//
// Structural problems are returned as errors. Problems confined to one
// record are returned as Diagnostics next to the data that did load.
package loader

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/okian/rcajudge/internal/domain/model"
)

// AnswerFile is the parsed ground truth of a competition.
type AnswerFile struct {
	// StartTime is the competition start, seconds since the epoch.
	StartTime float64
	// Faults are sorted by timestamp.
	Faults []model.FaultEvent
}

// LoadAnswer reads an answer file from path.
func LoadAnswer(path string) (AnswerFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return AnswerFile{}, fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
	}
	defer func() { _ = f.Close() }()
	return ReadAnswer(f)
}

// ReadAnswer parses {"startTime": n, "data": [[ts, [[host, metric], ...]], ...]}.
func ReadAnswer(r io.Reader) (AnswerFile, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return AnswerFile{}, fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
	}
	if !gjson.ValidBytes(raw) {
		return AnswerFile{}, fmt.Errorf("%w: malformed json", ErrInvalidAnswer)
	}
	doc := gjson.ParseBytes(raw)

	start := doc.Get("startTime")
	if start.Type != gjson.Number {
		return AnswerFile{}, fmt.Errorf("%w: startTime must be a number", ErrInvalidAnswer)
	}
	data := doc.Get("data")
	if !data.IsArray() {
		return AnswerFile{}, fmt.Errorf("%w: data must be an array", ErrInvalidAnswer)
	}

	out := AnswerFile{StartTime: start.Float()}
	for i, item := range data.Array() {
		parts := item.Array()
		if !item.IsArray() || len(parts) != 2 || parts[0].Type != gjson.Number {
			return AnswerFile{}, fmt.Errorf("%w: fault %d: want [timestamp, [[host, metric], ...]]", ErrInvalidAnswer, i)
		}
		ids, err := parsePairs(parts[1])
		if err != nil {
			return AnswerFile{}, fmt.Errorf("%w: fault %d: %w", ErrInvalidAnswer, i, err)
		}
		out.Faults = append(out.Faults, model.FaultEvent{
			// Fault timestamps are whole seconds.
			At:         float64(parts[0].Int()),
			Candidates: model.NewIdentifierSet(ids...),
		})
	}

	sort.SliceStable(out.Faults, func(i, j int) bool { return out.Faults[i].At < out.Faults[j].At })
	return out, nil
}

// parsePairs reads [[host, metric], ...] into identifiers.
func parsePairs(v gjson.Result) ([]model.Identifier, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("want an array of [host, metric] pairs")
	}
	items := v.Array()
	ids := make([]model.Identifier, 0, len(items))
	for _, item := range items {
		pair := item.Array()
		if !item.IsArray() || len(pair) != 2 {
			return nil, fmt.Errorf("want [host, metric], got %s", item.Raw)
		}
		ids = append(ids, model.Identifier{Host: pair[0].String(), Metric: pair[1].String()})
	}
	return ids, nil
}
