package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/rcajudge/internal/domain/model"
)

// ResultExt is the extension of per-team submission logs.
const ResultExt = ".log"

// LoadRoster reads the team list from path.
func LoadRoster(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadRoster(f)
}

// ReadRoster returns one team id per non-blank line, first occurrence wins.
func ReadRoster(r io.Reader) ([]string, error) {
	var teams []string
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		team := strings.TrimSpace(sc.Text())
		if team == "" {
			continue
		}
		if _, dup := seen[team]; dup {
			continue
		}
		seen[team] = struct{}{}
		teams = append(teams, team)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return teams, nil
}

// ResultPath returns the submission log location of team under dir.
func ResultPath(dir, team string) string {
	return filepath.Join(dir, team+ResultExt)
}

// TeamSubmissions is the loaded input of every judged team.
type TeamSubmissions struct {
	// Teams lists judged teams in roster order. Teams without a result
	// file are left out.
	Teams       []string
	Submissions map[string][]model.Submission
	Diagnostics Diagnostics
}

// LoadTeams reads the roster and each rostered team's submission log.
func LoadTeams(rosterPath, resultDir string) (TeamSubmissions, error) {
	teams, err := LoadRoster(rosterPath)
	if err != nil {
		return TeamSubmissions{}, err
	}

	out := TeamSubmissions{Submissions: make(map[string][]model.Submission, len(teams))}
	for _, team := range teams {
		path := ResultPath(resultDir, team)
		if _, err := os.Stat(path); err != nil {
			out.Diagnostics = append(out.Diagnostics, Diagnostic{
				Source: path,
				Team:   team,
				Err:    fmt.Errorf("%w: team %q", ErrMissingTeamResult, team),
			})
			continue
		}

		subs, diags, err := LoadSubmissions(path)
		if err != nil {
			return TeamSubmissions{}, fmt.Errorf("team %q: %w", team, err)
		}
		for i := range diags {
			diags[i].Team = team
		}
		out.Diagnostics = append(out.Diagnostics, diags...)
		out.Teams = append(out.Teams, team)
		out.Submissions[team] = subs
	}
	return out, nil
}
