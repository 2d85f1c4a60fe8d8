// Package service orchestrates judging runs: it matches every team's
// submissions against the faults, scores the matches, aggregates them into
// a leaderboard and keeps the last leaderboard for queries.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/rcajudge/internal/adapters/loader"
	"github.com/okian/rcajudge/internal/adapters/repository"
	"github.com/okian/rcajudge/internal/config"
	"github.com/okian/rcajudge/internal/domain/matching"
	"github.com/okian/rcajudge/internal/domain/scoring"
	"github.com/okian/rcajudge/internal/domain/types"
	"github.com/okian/rcajudge/pkg/logger"
	"github.com/okian/rcajudge/pkg/metrics"
)

const tracerName = "github.com/okian/rcajudge/internal/app"

// ErrNoLeaderboard is returned by queries before any run completed.
var ErrNoLeaderboard = errors.New("no leaderboard yet")

// Service runs judging passes with one configuration.
type Service struct {
	mu sync.RWMutex

	cfg         *config.Config
	workerCount int

	// leaderboard of the last completed run
	leaderboard repository.Store

	logger logger.Logger
	tracer trace.Tracer
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the judging configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithWorkerCount bounds how many teams are judged in parallel.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used for run and team spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.workerCount <= 0 {
		s.workerCount = s.cfg.WorkerCount
	}
	if s.workerCount <= 0 {
		s.workerCount = 1
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.logger = s.logger.Named("judge")
	return s
}

// Config returns the configuration the service judges with.
func (s *Service) Config() *config.Config { return s.cfg }

// WorkerCount returns the team fan-out limit.
func (s *Service) WorkerCount() int { return s.workerCount }

func (s *Service) matcherOptions() []matching.Option {
	return []matching.Option{
		matching.WithWindow(s.cfg.Window),
		matching.WithMode(matching.Mode(s.cfg.Collect)),
	}
}

func (s *Service) scorer() *scoring.TimeScorer {
	return scoring.NewTimeScorer(
		scoring.WithBeta(s.cfg.Beta),
		scoring.WithCombination(scoring.Combination(s.cfg.Combination)),
		scoring.WithMinPrecision(s.cfg.MinPrecision),
		scoring.WithMissPenalty(s.cfg.MissPenalty),
		scoring.WithRounding(s.cfg.RoundBase, s.cfg.RoundFloor),
	)
}

func (s *Service) selector() scoring.Selector {
	return scoring.Selector(s.cfg.Selector)
}

func (s *Service) gradient() scoring.Gradient {
	return scoring.Gradient(s.cfg.GradeGradient)
}

// publish stores table as the current leaderboard and returns its entries.
func (s *Service) publish(ctx context.Context, table types.ScoreTable, higherIsBetter bool) ([]types.Entry, error) {
	store := repository.NewTreapStore(
		repository.WithAscending(!higherIsBetter),
		repository.WithPrecision(s.cfg.ScorePrecision),
	)
	if err := store.Load(ctx, table); err != nil {
		return nil, fmt.Errorf("store leaderboard: %w", err)
	}
	for team, score := range table {
		metrics.UpdateTeamScore(team, score)
	}
	s.logger.Debug(ctx, "leaderboard published",
		logger.Int("teams", store.Count(ctx)),
		logger.Bool("ascending", !higherIsBetter),
		logger.Int("precision", s.cfg.ScorePrecision),
	)

	s.mu.Lock()
	s.leaderboard = store
	s.mu.Unlock()

	return store.All(ctx), nil
}

// TopN returns the top N entries of the last leaderboard.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	s.mu.RLock()
	store := s.leaderboard
	s.mu.RUnlock()
	if store == nil {
		return nil, ErrNoLeaderboard
	}
	return store.TopN(ctx, n)
}

// Rank returns the rank and score of a team on the last leaderboard.
func (s *Service) Rank(ctx context.Context, teamID string) (types.Entry, error) {
	s.mu.RLock()
	store := s.leaderboard
	s.mu.RUnlock()
	if store == nil {
		return types.Entry{}, ErrNoLeaderboard
	}
	return store.Rank(ctx, teamID)
}

// reportDiagnostics logs and counts recoverable input problems and returns
// them as strings for the report.
func (s *Service) reportDiagnostics(ctx context.Context, kind string, diags loader.Diagnostics) []string {
	if len(diags) == 0 {
		return nil
	}
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		fields := []logger.Field{
			logger.String("file", d.Source),
			logger.Int("line", d.Line),
			logger.Error(d.Err),
		}
		if d.Team != "" {
			fields = append(fields, logger.String("team", d.Team))
		}

		switch {
		case errors.Is(d.Err, loader.ErrMissingTeamResult):
			metrics.RecordTeamExcluded()
			s.logger.Warn(ctx, "result for team not found", fields...)
		case errors.Is(d.Err, loader.ErrMissingFaultResult):
			s.logger.Warn(ctx, "fault not answered", fields...)
		default:
			metrics.RecordParseError(kind)
			s.logger.Warn(ctx, "failed to parse record", fields...)
		}
		out = append(out, d.Error())
	}
	return out
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
