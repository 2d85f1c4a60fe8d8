// Package metrics provides Prometheus metrics for judging runs.
//
// The judge is a batch tool, so nothing is scraped: after a run the
// registry can be dumped to a node_exporter textfile with WriteTextfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors of a judging process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Run metrics
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	teamsRanked prometheus.Gauge
	teamScore   *prometheus.GaugeVec

	// Matching metrics
	submissionsExamined prometheus.Counter
	submissionsSkipped  prometheus.Counter
	quotaExhausted      prometheus.Counter
	faults              *prometheus.CounterVec

	// Input quality metrics
	parseErrors   *prometheus.CounterVec
	teamsExcluded prometheus.Counter

	// Leaderboard metrics
	leaderboardUpdates prometheus.Counter
	leaderboardQueries prometheus.Counter

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rcajudge",
		subsystem:        "judge",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of judging runs by scoring mode",
		ConstLabels: m.constLabels,
	}, []string{"mode"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of a judging run in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.teamsRanked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "teams_ranked",
		Help:        "Number of teams on the last leaderboard",
		ConstLabels: m.constLabels,
	})

	m.teamScore = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_score",
		Help:        "Final score of each team on the last leaderboard",
		ConstLabels: m.constLabels,
	}, []string{"team"})

	m.submissionsExamined = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submissions_examined_total",
		Help:        "Submissions charged against a team quota",
		ConstLabels: m.constLabels,
	})

	m.submissionsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submissions_skipped_total",
		Help:        "Submissions sent before the competition start and skipped free of charge",
		ConstLabels: m.constLabels,
	})

	m.quotaExhausted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "quota_exhausted_total",
		Help:        "Teams whose submission quota ran out before the last fault",
		ConstLabels: m.constLabels,
	})

	m.faults = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "faults_total",
		Help:        "Team and fault pairs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.parseErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "parse_errors_total",
		Help:        "Input records that could not be parsed, by input kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.teamsExcluded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "teams_excluded_total",
		Help:        "Rostered teams left out because their result file is missing",
		ConstLabels: m.constLabels,
	})

	m.leaderboardUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboard_updates_total",
		Help:        "Total number of leaderboard score updates",
		ConstLabels: m.constLabels,
	})

	m.leaderboardQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboard_queries_total",
		Help:        "Total number of leaderboard reads",
		ConstLabels: m.constLabels,
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Total number of errors by component",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RecordRun counts a finished run and observes its duration.
func (m *Manager) RecordRun(mode string, seconds float64) {
	if !m.enabled {
		return
	}
	m.runs.WithLabelValues(mode).Inc()
	m.runDuration.Observe(seconds)
}

// RecordMatching adds the outcome of one team's matching pass.
func (m *Manager) RecordMatching(examined, skipped int, exhausted bool) {
	if !m.enabled {
		return
	}
	m.submissionsExamined.Add(float64(examined))
	m.submissionsSkipped.Add(float64(skipped))
	if exhausted {
		m.quotaExhausted.Inc()
	}
}

// RecordFault counts a team and fault pair as matched or missed.
func (m *Manager) RecordFault(matched bool) {
	if !m.enabled {
		return
	}
	if matched {
		m.faults.WithLabelValues("matched").Inc()
		return
	}
	m.faults.WithLabelValues("missed").Inc()
}

// RecordParseError counts an unparseable record of the given input kind.
func (m *Manager) RecordParseError(kind string) {
	if !m.enabled {
		return
	}
	m.parseErrors.WithLabelValues(kind).Inc()
}

// RecordTeamExcluded counts a team dropped for a missing result file.
func (m *Manager) RecordTeamExcluded() {
	if !m.enabled {
		return
	}
	m.teamsExcluded.Inc()
}

// RecordLeaderboardUpdate increments the leaderboard updates counter.
func (m *Manager) RecordLeaderboardUpdate() {
	if !m.enabled {
		return
	}
	m.leaderboardUpdates.Inc()
}

// RecordLeaderboardQuery increments the leaderboard reads counter.
func (m *Manager) RecordLeaderboardQuery() {
	if !m.enabled {
		return
	}
	m.leaderboardQueries.Inc()
}

// UpdateTeamScore publishes a team's final score.
func (m *Manager) UpdateTeamScore(team string, score float64) {
	if !m.enabled {
		return
	}
	m.teamScore.WithLabelValues(team).Set(score)
}

// UpdateTeamsRanked sets the leaderboard size.
func (m *Manager) UpdateTeamsRanked(count int) {
	if !m.enabled {
		return
	}
	m.teamsRanked.Set(float64(count))
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if !m.enabled {
		return
	}
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Package-level helpers delegate to the global manager.

// RecordRun counts a finished run and observes its duration.
func RecordRun(mode string, seconds float64) { globalManager.RecordRun(mode, seconds) }

// RecordMatching adds the outcome of one team's matching pass.
func RecordMatching(examined, skipped int, exhausted bool) {
	globalManager.RecordMatching(examined, skipped, exhausted)
}

// RecordFault counts a team and fault pair as matched or missed.
func RecordFault(matched bool) { globalManager.RecordFault(matched) }

// RecordParseError counts an unparseable record of the given input kind.
func RecordParseError(kind string) { globalManager.RecordParseError(kind) }

// RecordTeamExcluded counts a team dropped for a missing result file.
func RecordTeamExcluded() { globalManager.RecordTeamExcluded() }

// RecordLeaderboardUpdate increments the leaderboard updates counter.
func RecordLeaderboardUpdate() { globalManager.RecordLeaderboardUpdate() }

// RecordLeaderboardQuery increments the leaderboard reads counter.
func RecordLeaderboardQuery() { globalManager.RecordLeaderboardQuery() }

// UpdateTeamScore publishes a team's final score.
func UpdateTeamScore(team string, score float64) { globalManager.UpdateTeamScore(team, score) }

// UpdateTeamsRanked sets the leaderboard size.
func UpdateTeamsRanked(count int) { globalManager.UpdateTeamsRanked(count) }

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the custom registry in the text exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
