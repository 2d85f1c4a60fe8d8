package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/okian/rcajudge/internal/domain/model"
)

// LoadGradedAnswers reads {"<fault id>": [category, host, [metric|null, ...]]}.
// Answers are returned ordered by fault id.
func LoadGradedAnswers(path string) ([]model.Answer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
	}
	return ParseGradedAnswers(raw)
}

// ParseGradedAnswers parses a graded answer document.
func ParseGradedAnswers(raw []byte) ([]model.Answer, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidAnswer)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: want an object keyed by fault id", ErrInvalidAnswer)
	}

	var (
		answers []model.Answer
		bad     error
	)
	doc.ForEach(func(key, value gjson.Result) bool {
		parts := value.Array()
		if !value.IsArray() || len(parts) != 3 || !parts[2].IsArray() {
			bad = fmt.Errorf("%w: fault %s: want [category, host, [candidates]]", ErrInvalidAnswer, key.String())
			return false
		}
		metrics := make([]string, 0, len(parts[2].Array()))
		for _, m := range parts[2].Array() {
			metrics = append(metrics, nullable(m))
		}
		answers = append(answers, model.NewAnswer(key.String(), parts[0].String(), parts[1].String(), metrics...))
		return true
	})
	if bad != nil {
		return nil, bad
	}

	sort.SliceStable(answers, func(i, j int) bool { return faultLess(answers[i].FaultID, answers[j].FaultID) })
	return answers, nil
}

// LoadGradedResults reads {"<fault id>": [[category, host, metric|null], ...]}.
// An unreadable document yields no results and one diagnostic. Malformed
// guesses are dropped with a diagnostic each.
func LoadGradedResults(path string) (map[string][]model.Identifier, Diagnostics, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	res, diags := ParseGradedResults(raw, path)
	return res, diags, nil
}

// ParseGradedResults parses a graded result document.
func ParseGradedResults(raw []byte, source string) (map[string][]model.Identifier, Diagnostics) {
	out := make(map[string][]model.Identifier)
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return out, Diagnostics{{Source: source, Err: fmt.Errorf("%w: malformed json", ErrParse)}}
	}

	var diags Diagnostics
	gjson.ParseBytes(raw).ForEach(func(key, value gjson.Result) bool {
		fault := key.String()
		if !value.IsArray() {
			diags = append(diags, Diagnostic{Source: source, Err: fmt.Errorf("%w: fault %s: want a list of guesses", ErrParse, fault)})
			return true
		}
		guesses := make([]model.Identifier, 0, len(value.Array()))
		for _, g := range value.Array() {
			parts := g.Array()
			if !g.IsArray() || len(parts) != 3 {
				diags = append(diags, Diagnostic{Source: source, Err: fmt.Errorf("%w: fault %s: guess %s", ErrParse, fault, g.Raw)})
				continue
			}
			guesses = append(guesses, model.Identifier{
				Category: parts[0].String(),
				Host:     parts[1].String(),
				Metric:   nullable(parts[2]),
			})
		}
		out[fault] = guesses
		return true
	})
	return out, diags
}

// nullable maps JSON null to the empty metric.
func nullable(v gjson.Result) string {
	if v.Type == gjson.Null {
		return ""
	}
	return v.String()
}

// faultLess orders numeric fault ids numerically and others lexically.
func faultLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// GradedExt is the extension of per-team graded result files.
const GradedExt = ".json"

// TeamGuesses is the loaded graded input of every judged team.
type TeamGuesses struct {
	// Teams lists judged teams in roster order.
	Teams       []string
	Results     map[string]map[string][]model.Identifier
	Diagnostics Diagnostics
}

// LoadGradedTeams reads the roster and each team's <team>.json result.
func LoadGradedTeams(rosterPath, resultDir string) (TeamGuesses, error) {
	teams, err := LoadRoster(rosterPath)
	if err != nil {
		return TeamGuesses{}, err
	}

	out := TeamGuesses{Results: make(map[string]map[string][]model.Identifier, len(teams))}
	for _, team := range teams {
		path := filepath.Join(resultDir, team+GradedExt)
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			out.Diagnostics = append(out.Diagnostics, Diagnostic{
				Source: path,
				Team:   team,
				Err:    fmt.Errorf("%w: team %q", ErrMissingTeamResult, team),
			})
			continue
		}
		if err != nil {
			return TeamGuesses{}, fmt.Errorf("team %q: %w", team, err)
		}

		res, diags := ParseGradedResults(raw, path)
		for i := range diags {
			diags[i].Team = team
		}
		out.Diagnostics = append(out.Diagnostics, diags...)
		out.Teams = append(out.Teams, team)
		out.Results[team] = res
	}
	return out, nil
}
