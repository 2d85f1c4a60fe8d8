package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/rcajudge/internal/adapters/loader"
	"github.com/okian/rcajudge/internal/adapters/report"
	"github.com/okian/rcajudge/internal/domain/aggregate"
	"github.com/okian/rcajudge/internal/domain/model"
	"github.com/okian/rcajudge/internal/domain/scoring"
	"github.com/okian/rcajudge/pkg/logger"
	"github.com/okian/rcajudge/pkg/metrics"
)

// Grade scores one team's ranked guesses against the graded answers. Faults
// the team did not answer score zero and are reported as diagnostics. An
// answer set without faults fails with aggregate.ErrEmptyInput.
func (s *Service) Grade(ctx context.Context, source string, answers []model.Answer, results map[string][]model.Identifier) (report.GradeSheet, loader.Diagnostics, error) {
	gradient := s.gradient()
	sheet := report.GradeSheet{
		Faults:  len(answers),
		Details: make([]report.FaultGrade, 0, len(answers)),
	}

	var diags loader.Diagnostics
	for _, answer := range answers {
		detail := report.FaultGrade{FaultID: answer.FaultID}
		guesses, ok := results[answer.FaultID]
		if !ok {
			diags = append(diags, loader.Diagnostic{
				Source: source,
				Err:    fmt.Errorf("%w: fault %s", loader.ErrMissingFaultResult, answer.FaultID),
			})
			sheet.Details = append(sheet.Details, detail)
			metrics.RecordFault(false)
			continue
		}

		detail.Answered = true
		sheet.Answered++
		if rank, found := scoring.RankOf(guesses, answer); found {
			detail.Rank = rank + 1
			detail.Points = gradient.Points(rank, true)
		}
		metrics.RecordFault(detail.Points > 0)
		sheet.Total += detail.Points
		sheet.Details = append(sheet.Details, detail)
	}

	mean, err := aggregate.Mean(gradesOf(sheet.Details))
	if err != nil {
		s.logger.Error(ctx, "grading failed", logger.String("file", source), logger.Error(err))
		return report.GradeSheet{}, diags, fmt.Errorf("grade %s: %w", source, err)
	}
	sheet.Mean = mean
	return sheet, diags, nil
}

// GradeFiles grades one result file against one graded answer file.
func (s *Service) GradeFiles(ctx context.Context, answerPath, resultPath string) (report.GradeSheet, error) {
	ctx, span := s.tracer.Start(ctx, "grade.file", trace.WithAttributes(
		attribute.String("answer", answerPath),
		attribute.String("result", resultPath),
	))
	defer span.End()

	answers, err := loader.LoadGradedAnswers(answerPath)
	if err != nil {
		return report.GradeSheet{}, failSpan(span, err)
	}
	results, diags, err := loader.LoadGradedResults(resultPath)
	if err != nil {
		return report.GradeSheet{}, failSpan(span, err)
	}
	s.logger.Info(ctx, "grading result",
		logger.String("answer", answerPath),
		logger.String("result", resultPath),
		logger.Int("faults", len(answers)),
		logger.Int("results", len(results)),
	)

	sheet, missing, err := s.Grade(ctx, resultPath, answers, results)
	if err != nil {
		return report.GradeSheet{}, failSpan(span, err)
	}
	sheet.Diagnostics = s.reportDiagnostics(ctx, "graded_result", append(diags, missing...))
	return sheet, nil
}

// JudgeGraded grades every team and ranks them by mean grade.
func (s *Service) JudgeGraded(ctx context.Context, answers []model.Answer, teams loader.TeamGuesses) (report.Leaderboard, error) {
	start := time.Now()
	runID := uuid.NewString()

	ctx, span := s.tracer.Start(ctx, "judge.graded", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("teams", len(teams.Teams)),
		attribute.Int("faults", len(answers)),
	))
	defer span.End()

	diags := s.reportDiagnostics(ctx, "graded_result", teams.Diagnostics)

	in := aggregate.Input{
		Teams:  teams.Teams,
		Scores: make(map[string][]float64, len(teams.Teams)),
	}
	for _, team := range teams.Teams {
		sheet, missing, err := s.Grade(ctx, team, answers, teams.Results[team])
		if err != nil {
			return report.Leaderboard{}, failSpan(span, err)
		}
		for i := range missing {
			missing[i].Team = team
		}
		diags = append(diags, s.reportDiagnostics(ctx, "graded_result", missing)...)
		in.Scores[team] = gradesOf(sheet.Details)
	}

	policy := aggregate.MeanGrade{}
	table, err := policy.Aggregate(in)
	if err != nil {
		s.logger.Error(ctx, "aggregation failed", logger.String("run_id", runID), logger.Error(err))
		return report.Leaderboard{}, failSpan(span, fmt.Errorf("aggregate: %w", err))
	}

	entries, err := s.publish(ctx, table, policy.HigherIsBetter())
	if err != nil {
		return report.Leaderboard{}, failSpan(span, err)
	}
	metrics.RecordRun(policy.Name(), time.Since(start).Seconds())

	return report.Leaderboard{
		RunID:       runID,
		Mode:        policy.Name(),
		Faults:      len(answers),
		Entries:     entries,
		Excluded:    excludedTeams(teams.Diagnostics),
		Diagnostics: diags,
	}, nil
}

// JudgeGradedFiles loads graded inputs from disk and runs JudgeGraded.
func (s *Service) JudgeGradedFiles(ctx context.Context, answerPath, rosterPath, resultDir string) (report.Leaderboard, error) {
	answers, err := loader.LoadGradedAnswers(answerPath)
	if err != nil {
		return report.Leaderboard{}, err
	}
	teams, err := loader.LoadGradedTeams(rosterPath, resultDir)
	if err != nil {
		return report.Leaderboard{}, err
	}
	return s.JudgeGraded(ctx, answers, teams)
}

func gradesOf(details []report.FaultGrade) []float64 {
	out := make([]float64, len(details))
	for i, d := range details {
		out[i] = d.Points
	}
	return out
}
