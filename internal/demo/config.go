// Package demo writes a self-consistent set of sample competition files:
// ground truth, a roster, per-team submission logs and the graded variant's
// answer and result documents.
package demo

import (
	"fmt"
	"runtime"
)

// Default generator settings.
const (
	DefaultTeams  = 5
	DefaultFaults = 8
	DefaultSeed   = 1
)

// Layout of the generated tree, relative to Config.Dir.
const (
	AnswerFile       = "answer.json"
	RosterFile       = "teams.txt"
	ResultDir        = "results"
	GradedDir        = "graded"
	GradedAnswerFile = "answer.json"
)

// Config holds generator settings.
type Config struct {
	Dir     string // Output directory
	Teams   int    // Number of teams to generate
	Faults  int    // Number of injected faults
	Seed    uint64 // Seed for the pseudo-random team behaviour
	Workers int    // Concurrent file writers
}

// DefaultConfig returns settings that produce a small but varied sample.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:     dir,
		Teams:   DefaultTeams,
		Faults:  DefaultFaults,
		Seed:    DefaultSeed,
		Workers: runtime.NumCPU(),
	}
}

func (c Config) validate() error {
	switch {
	case c.Dir == "":
		return fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	case c.Teams < 1:
		return fmt.Errorf("%w: teams must be positive, got %d", ErrInvalidConfig, c.Teams)
	case c.Faults < 1:
		return fmt.Errorf("%w: faults must be positive, got %d", ErrInvalidConfig, c.Faults)
	}
	return nil
}

// Files lists the paths written by Generate.
type Files struct {
	Answer       string   `json:"answer" yaml:"answer"`
	Roster       string   `json:"roster" yaml:"roster"`
	ResultDir    string   `json:"result_dir" yaml:"result_dir"`
	GradedAnswer string   `json:"graded_answer" yaml:"graded_answer"`
	GradedDir    string   `json:"graded_dir" yaml:"graded_dir"`
	Teams        []string `json:"teams" yaml:"teams"`
}
