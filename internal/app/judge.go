package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/okian/rcajudge/internal/adapters/loader"
	"github.com/okian/rcajudge/internal/adapters/report"
	"github.com/okian/rcajudge/internal/domain/aggregate"
	"github.com/okian/rcajudge/internal/domain/matching"
	"github.com/okian/rcajudge/internal/domain/model"
	"github.com/okian/rcajudge/pkg/logger"
	"github.com/okian/rcajudge/pkg/metrics"
)

// TeamResult is one team's outcome of the matching and scoring pass.
type TeamResult struct {
	TeamID string
	// Costs holds one cost per fault, in fault order.
	Costs []float64
	// Solved counts faults cheaper than the miss penalty.
	Solved int
	// Outcome is the raw matcher outcome.
	Outcome matching.Outcome
	// FreeSkipped counts submissions before the competition start.
	FreeSkipped int
}

// JudgeTeam matches one team's submissions against answer and scores every
// fault.
func (s *Service) JudgeTeam(ctx context.Context, teamID string, answer loader.AnswerFile, subs []model.Submission) TeamResult {
	_, span := s.tracer.Start(ctx, "judge.team", trace.WithAttributes(
		attribute.String("team", teamID),
		attribute.Int("submissions", len(subs)),
	))
	defer span.End()

	m := matching.New(subs, s.matcherOptions()...)
	w := matching.NewWindow(s.cfg.Quota)

	res := TeamResult{TeamID: teamID}
	if s.cfg.SkipBeforeStart {
		w, res.FreeSkipped = m.Skip(w, answer.StartTime)
	}
	res.Outcome = m.Run(answer.Faults, w)

	scorer := s.scorer()
	sel := s.selector()
	res.Costs = make([]float64, len(answer.Faults))
	for i, results := range res.Outcome.Results {
		cost := scorer.FaultCost(sel, results)
		res.Costs[i] = cost
		solved := cost < scorer.MissPenalty()
		if solved {
			res.Solved++
		}
		metrics.RecordFault(solved)
	}

	exhausted := res.Outcome.Exhausted >= 0
	metrics.RecordMatching(res.Outcome.Skipped+res.Outcome.Consumed, res.FreeSkipped, exhausted)
	if exhausted && res.Outcome.Exhausted < len(answer.Faults)-1 {
		s.logger.Debug(ctx, "quota exhausted",
			logger.String("team", teamID),
			logger.Int("fault", res.Outcome.Exhausted),
		)
	}
	span.SetAttributes(attribute.Int("solved", res.Solved))
	return res
}

// Judge scores every team and builds the leaderboard for the configured
// scoring mode (rank or fscore).
func (s *Service) Judge(ctx context.Context, answer loader.AnswerFile, teams loader.TeamSubmissions) (report.Leaderboard, error) {
	start := time.Now()
	runID := uuid.NewString()
	mode := s.cfg.ScoringMode

	ctx, span := s.tracer.Start(ctx, "judge.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("mode", mode),
		attribute.Int("teams", len(teams.Teams)),
		attribute.Int("faults", len(answer.Faults)),
	))
	defer span.End()

	if mode == aggregate.ModeGrade {
		return report.Leaderboard{}, failSpan(span, fmt.Errorf("%w: %q needs graded input", aggregate.ErrUnknownMode, mode))
	}
	policy, err := aggregate.ForMode(mode, s.cfg.MaxPoints, s.cfg.MissPenalty)
	if err != nil {
		return report.Leaderboard{}, failSpan(span, err)
	}

	s.logger.Info(ctx, "judging run started",
		logger.String("run_id", runID),
		logger.String("mode", mode),
		logger.Int("teams", len(teams.Teams)),
		logger.Int("faults", len(answer.Faults)),
	)
	diags := s.reportDiagnostics(ctx, "submission", teams.Diagnostics)

	results := make([]TeamResult, len(teams.Teams))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i, team := range teams.Teams {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.JudgeTeam(gctx, team, answer, teams.Submissions[team])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.Leaderboard{}, failSpan(span, err)
	}

	in := aggregate.Input{
		Teams:  teams.Teams,
		Scores: make(map[string][]float64, len(results)),
	}
	for _, r := range results {
		in.Scores[r.TeamID] = r.Costs
	}

	table, err := policy.Aggregate(in)
	if err != nil {
		s.logger.Error(ctx, "aggregation failed", logger.String("run_id", runID), logger.Error(err))
		return report.Leaderboard{}, failSpan(span, fmt.Errorf("aggregate: %w", err))
	}

	entries, err := s.publish(ctx, table, policy.HigherIsBetter())
	if err != nil {
		return report.Leaderboard{}, failSpan(span, err)
	}

	elapsed := time.Since(start)
	metrics.RecordRun(mode, elapsed.Seconds())
	s.logger.Info(ctx, "judging run finished",
		logger.String("run_id", runID),
		logger.Int("ranked", len(entries)),
		logger.Duration("took", elapsed),
	)

	return report.Leaderboard{
		RunID:       runID,
		Mode:        mode,
		Faults:      len(answer.Faults),
		Entries:     entries,
		Excluded:    excludedTeams(teams.Diagnostics),
		Diagnostics: diags,
	}, nil
}

// JudgeFiles loads the inputs from disk and runs Judge.
func (s *Service) JudgeFiles(ctx context.Context, answerPath, rosterPath, resultDir string) (report.Leaderboard, error) {
	answer, err := loader.LoadAnswer(answerPath)
	if err != nil {
		return report.Leaderboard{}, err
	}
	teams, err := loader.LoadTeams(rosterPath, resultDir)
	if err != nil {
		return report.Leaderboard{}, err
	}
	return s.Judge(ctx, answer, teams)
}

// ScoreTeam computes the mean cost per fault of one team.
func (s *Service) ScoreTeam(ctx context.Context, source string, answer loader.AnswerFile, subs []model.Submission) (report.TeamScore, error) {
	res := s.JudgeTeam(ctx, source, answer, subs)
	mean, err := aggregate.Mean(res.Costs)
	if err != nil {
		return report.TeamScore{}, fmt.Errorf("score %s: %w", source, err)
	}
	return report.TeamScore{
		Source:          source,
		Faults:          len(res.Costs),
		Solved:          res.Solved,
		MeanCostSeconds: mean,
	}, nil
}

// ScoreFile loads one answer file and one submission log and runs ScoreTeam.
func (s *Service) ScoreFile(ctx context.Context, answerPath, resultPath string) (report.TeamScore, error) {
	answer, err := loader.LoadAnswer(answerPath)
	if err != nil {
		return report.TeamScore{}, err
	}
	subs, diags, err := loader.LoadSubmissions(resultPath)
	if err != nil {
		return report.TeamScore{}, err
	}
	out, err := s.ScoreTeam(ctx, resultPath, answer, subs)
	if err != nil {
		return report.TeamScore{}, err
	}
	out.Diagnostics = s.reportDiagnostics(ctx, "submission", diags)
	return out, nil
}

func excludedTeams(diags loader.Diagnostics) []string {
	var out []string
	for _, d := range diags {
		if d.Team != "" && errors.Is(d.Err, loader.ErrMissingTeamResult) {
			out = append(out, d.Team)
		}
	}
	return out
}
