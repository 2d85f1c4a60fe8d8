package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/rcajudge/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Quota, convey.ShouldEqual, 24)
			convey.So(cfg.Window, convey.ShouldEqual, 600)
			convey.So(cfg.Beta, convey.ShouldEqual, 0.5)
			convey.So(cfg.ScoringMode, convey.ShouldEqual, "rank")
			convey.So(cfg.Selector, convey.ShouldEqual, "last")
			convey.So(cfg.Collect, convey.ShouldEqual, "all")
			convey.So(cfg.Combination, convey.ShouldEqual, "fbeta")
			convey.So(cfg.MinPrecision, convey.ShouldEqual, 0.5)
			convey.So(cfg.GradeGradient, convey.ShouldResemble, []float64{100, 20})
			convey.So(cfg.MissPenalty, convey.ShouldEqual, 21600)
			convey.So(cfg.RoundBase, convey.ShouldEqual, 10)
			convey.So(cfg.RoundFloor, convey.ShouldEqual, 0)
			convey.So(cfg.MaxPoints, convey.ShouldEqual, 10)
			convey.So(cfg.ScorePrecision, convey.ShouldEqual, 6)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.SkipBeforeStart, convey.ShouldBeTrue)
			convey.So(cfg.OutputFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MetricsFile, convey.ShouldBeEmpty)
		})

		convey.Convey("Then the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		cases := map[string]func(*config.Config){
			"negative quota":       func(c *config.Config) { c.Quota = -1 },
			"zero beta":            func(c *config.Config) { c.Beta = 0 },
			"unknown mode":         func(c *config.Config) { c.ScoringMode = "median" },
			"unknown selector":     func(c *config.Config) { c.Selector = "first" },
			"unknown collect":      func(c *config.Config) { c.Collect = "some" },
			"unknown combination":  func(c *config.Config) { c.Combination = "harmonic" },
			"precision above one":  func(c *config.Config) { c.MinPrecision = 1.5 },
			"negative gradient":    func(c *config.Config) { c.GradeGradient = []float64{100, -1} },
			"zero miss penalty":    func(c *config.Config) { c.MissPenalty = 0 },
			"zero workers":         func(c *config.Config) { c.WorkerCount = 0 },
			"unknown format":       func(c *config.Config) { c.OutputFormat = "xml" },
			"unknown log level":    func(c *config.Config) { c.LogLevel = "trace" },
			"non positive maximum": func(c *config.Config) { c.MaxPoints = 0 },
			"negative precision":   func(c *config.Config) { c.ScorePrecision = -1 },
			"excessive precision":  func(c *config.Config) { c.ScorePrecision = 13 },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+name+" should be rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a config with zero quota", t, func() {
		cfg := config.New()
		cfg.Quota = 0

		convey.Convey("Then it should still be valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
