package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/rcajudge/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Quota, convey.ShouldEqual, 24)
				convey.So(cfg.Window, convey.ShouldEqual, 600)
				convey.So(cfg.ScoringMode, convey.ShouldEqual, "rank")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RCAJUDGE_QUOTA", "5")
			_ = os.Setenv("RCAJUDGE_WINDOW", "300")
			_ = os.Setenv("RCAJUDGE_SCORING_MODE", "fscore")
			_ = os.Setenv("RCAJUDGE_SKIP_BEFORE_START", "false")
			_ = os.Setenv("RCAJUDGE_GRADE_GRADIENT", "50,25,5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Quota, convey.ShouldEqual, 5)
				convey.So(cfg.Window, convey.ShouldEqual, 300)
				convey.So(cfg.ScoringMode, convey.ShouldEqual, "fscore")
				convey.So(cfg.SkipBeforeStart, convey.ShouldBeFalse)
				convey.So(cfg.GradeGradient, convey.ShouldResemble, []float64{50, 25, 5})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
quota: 10
window: 120
beta: 1
selector: best
output_format: json
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RCAJUDGE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Quota, convey.ShouldEqual, 10)
				convey.So(cfg.Window, convey.ShouldEqual, 120)
				convey.So(cfg.Beta, convey.ShouldEqual, 1)
				convey.So(cfg.Selector, convey.ShouldEqual, "best")
				convey.So(cfg.OutputFormat, convey.ShouldEqual, "json")
			})

			convey.Convey("Then untouched fields should keep defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MissPenalty, convey.ShouldEqual, 21600)
				convey.So(cfg.Collect, convey.ShouldEqual, "all")
			})
		})

		convey.Convey("When env and YAML both set a field", func() {
			tmpFile := createTempConfigFile("quota: 10\nwindow: 120\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RCAJUDGE_CONFIG", tmpFile)
			_ = os.Setenv("RCAJUDGE_QUOTA", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Quota, convey.ShouldEqual, 3)
				convey.So(cfg.Window, convey.ShouldEqual, 120)
			})
		})

		convey.Convey("When a dotenv file is named", func() {
			envFile := createTempConfigFile("RCAJUDGE_QUOTA=7\nRCAJUDGE_SELECTOR=best\n")
			defer func() { _ = os.Remove(envFile) }()

			_ = os.Setenv("RCAJUDGE_ENV_FILE", envFile)
			_ = os.Setenv("RCAJUDGE_SELECTOR", "last")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values should apply without overriding the environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Quota, convey.ShouldEqual, 7)
				convey.So(cfg.Selector, convey.ShouldEqual, "last")
			})
		})

		convey.Convey("When the dotenv file does not exist", func() {
			_ = os.Setenv("RCAJUDGE_ENV_FILE", "/non/existent/.env")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail to load", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("RCAJUDGE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail to load", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a numeric env var is malformed", func() {
			_ = os.Setenv("RCAJUDGE_QUOTA", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail to load", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value violates validation", func() {
			_ = os.Setenv("RCAJUDGE_QUOTA", "-4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected as invalid", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"RCAJUDGE_CONFIG",
		"RCAJUDGE_ENV_FILE",
		"RCAJUDGE_SELECTOR",
		"RCAJUDGE_QUOTA",
		"RCAJUDGE_WINDOW",
		"RCAJUDGE_SCORING_MODE",
		"RCAJUDGE_SKIP_BEFORE_START",
		"RCAJUDGE_GRADE_GRADIENT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "rcajudge-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
