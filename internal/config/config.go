// Package config defines judging configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env vars on top.
// - Validation uses struct tags and is applied by Validate.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// Config contains the parameters of a judging run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Quota is the number of submissions examined per team over the whole run.
	Quota int `koanf:"quota" validate:"min=0"`

	// Window is the response window after a fault, in seconds.
	Window float64 `koanf:"window" validate:"gte=0"`

	// Beta weights recall against precision in the F-beta combination.
	Beta float64 `koanf:"beta" validate:"gt=0"`

	// ScoringMode picks the leaderboard policy: rank, fscore or grade.
	ScoringMode string `koanf:"scoring_mode" validate:"oneof=rank fscore grade"`

	// Selector reduces several answers to one fault: last or best.
	Selector string `koanf:"selector" validate:"oneof=last best"`

	// Collect picks which in-window answers are kept: all or last.
	Collect string `koanf:"collect" validate:"oneof=all last"`

	// Combination divides elapsed time by fbeta, recall or mean.
	Combination string `koanf:"combination" validate:"oneof=fbeta recall mean"`

	// MinPrecision is the precision a match needs to count as confident.
	MinPrecision float64 `koanf:"min_precision" validate:"gte=0,lte=1"`

	// GradeGradient maps the rank of the first correct guess to points.
	GradeGradient []float64 `koanf:"grade_gradient" validate:"dive,gte=0"`

	// MissPenalty is the cost of an unsolved fault, in seconds.
	MissPenalty float64 `koanf:"miss_penalty" validate:"gt=0"`

	// RoundBase and RoundFloor coarsen costs upward to a multiple of the base.
	RoundBase  float64 `koanf:"round_base" validate:"gte=0"`
	RoundFloor float64 `koanf:"round_floor" validate:"gte=0"`

	// MaxPoints is awarded to the best team of each fault in rank mode.
	MaxPoints float64 `koanf:"max_points" validate:"gt=0"`

	// ScorePrecision is how many decimal places of a final score decide
	// leaderboard order and ties.
	ScorePrecision int `koanf:"score_precision" validate:"min=0,max=12"`

	// WorkerCount bounds how many teams are judged in parallel.
	WorkerCount int `koanf:"worker_count" validate:"min=1"`

	// SkipBeforeStart ignores, free of charge, answers sent before startTime.
	SkipBeforeStart bool `koanf:"skip_before_start"`

	// OutputFormat selects the report format: text, json or yaml.
	OutputFormat string `koanf:"output_format" validate:"oneof=text json yaml"`

	// MetricsFile receives a Prometheus text dump after the run when set.
	MetricsFile string `koanf:"metrics_file"`
}

var validate = validator.New()

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:        "info",
		Quota:           24,
		Window:          600,
		Beta:            0.5,
		ScoringMode:     "rank",
		Selector:        "last",
		Collect:         "all",
		Combination:     "fbeta",
		MinPrecision:    0.5,
		GradeGradient:   []float64{100, 20},
		MissPenalty:     6 * 60 * 60,
		RoundBase:       10,
		RoundFloor:      0,
		MaxPoints:       10,
		ScorePrecision:  6,
		WorkerCount:     runtime.NumCPU(),
		SkipBeforeStart: true,
		OutputFormat:    "text",
	}
	return c
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
