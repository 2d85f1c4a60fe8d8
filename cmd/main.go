package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"github.com/okian/rcajudge/internal/adapters/report"
	app "github.com/okian/rcajudge/internal/app"
	"github.com/okian/rcajudge/internal/config"
	"github.com/okian/rcajudge/internal/demo"
	"github.com/okian/rcajudge/pkg/logger"
	"github.com/okian/rcajudge/pkg/metrics"
)

// Process exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Actions.
const (
	actionJudge = "judge"
	actionScore = "score"
	actionGrade = "grade"
	actionDemo  = "demo"
)

const tracerName = "github.com/okian/rcajudge/cmd"

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags holds the parsed command line. Judging parameters only override the
// loaded configuration when given explicitly; set records which were.
type flags struct {
	answer  string
	roster  string
	results string
	result  string
	dir     string
	top     int

	demoTeams  int
	demoFaults int
	demoSeed   uint64

	set map[string]bool

	mode        string
	selector    string
	combination string
	beta        float64
	format      string
	logLevel    string
	quota       int
	window      float64
	workers     int
	metricsFile string
}

func parseFlags(action string, args []string, stderr io.Writer) (*flags, error) {
	f := &flags{set: map[string]bool{}}
	fs := flag.NewFlagSet("rcajudge "+action, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.answer, "answer", "", "Ground truth file (graded answer file for grade)")
	fs.StringVar(&f.roster, "teams", "", "Roster file listing one team per line")
	fs.StringVar(&f.results, "results", "", "Directory holding one result file per team")
	fs.StringVar(&f.result, "result", "", "Single result file for score and grade")
	fs.IntVar(&f.top, "top", 0, "Only print the top N leaderboard entries (0 prints all)")
	fs.StringVar(&f.dir, "dir", "demo", "Output directory for demo")
	fs.IntVar(&f.demoTeams, "n-teams", demo.DefaultTeams, "Number of demo teams")
	fs.IntVar(&f.demoFaults, "faults", demo.DefaultFaults, "Number of demo faults")
	fs.Uint64Var(&f.demoSeed, "seed", demo.DefaultSeed, "Seed for demo team behaviour")

	fs.StringVar(&f.mode, "mode", "", "Scoring mode: rank, fscore or grade")
	fs.StringVar(&f.selector, "selector", "", "Answer selector per fault: last or best")
	fs.StringVar(&f.combination, "combination", "", "Time adjustment: fbeta, recall or mean")
	fs.Float64Var(&f.beta, "beta", 0, "Beta of the F-beta combination")
	fs.StringVar(&f.format, "format", "", "Output format: text, json or yaml")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.IntVar(&f.quota, "quota", 0, "Submissions examined per team")
	fs.Float64Var(&f.window, "window", 0, "Response window in seconds")
	fs.IntVar(&f.workers, "workers", 0, "Teams judged in parallel")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// apply overrides cfg with explicitly set flags.
func (f *flags) apply(cfg *config.Config) error {
	if f.set["mode"] {
		cfg.ScoringMode = f.mode
	}
	if f.set["selector"] {
		cfg.Selector = f.selector
	}
	if f.set["combination"] {
		cfg.Combination = f.combination
	}
	if f.set["beta"] {
		cfg.Beta = f.beta
	}
	if f.set["format"] {
		cfg.OutputFormat = f.format
	}
	if f.set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if f.set["quota"] {
		cfg.Quota = f.quota
	}
	if f.set["window"] {
		cfg.Window = f.window
	}
	if f.set["workers"] {
		cfg.WorkerCount = f.workers
	}
	if f.set["metrics-file"] {
		cfg.MetricsFile = f.metricsFile
	}
	return cfg.Validate()
}

func require(values map[string]string) error {
	for name, v := range values {
		if v == "" {
			return fmt.Errorf("%w: -%s is required", errUsage, name)
		}
	}
	return nil
}

func usage(w io.Writer) {
	_, _ = io.WriteString(w, `Usage:
  rcajudge judge -answer answer.json -teams teams.txt -results DIR [-mode rank|fscore|grade] [-top N]
  rcajudge score -answer answer.json -result team.log
  rcajudge grade -answer answer.json -result result.json
  rcajudge demo  [-dir DIR] [-n-teams N] [-faults N] [-seed S]

Common flags:
  -selector last|best  -combination fbeta|recall|mean  -beta B
  -format text|json|yaml  -log-level LEVEL  -quota N  -window SECONDS
  -workers N  -metrics-file PATH

Configuration is read from $RCAJUDGE_CONFIG (YAML), $RCAJUDGE_ENV_FILE and
RCAJUDGE_* environment variables; flags take precedence.
`)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := logger.InitWithWriter(stderr); err != nil {
		_, _ = io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n")
		return exitError
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}
	action := args[0]

	f, err := parseFlags(action, args[1:], stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		_, _ = io.WriteString(stderr, err.Error()+"\n")
		return exitUsage
	}

	// Load configuration (defaults -> optional file -> env -> flags)
	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = io.WriteString(stderr, "failed to load config: "+err.Error()+"\n")
		return exitError
	}
	if err := f.apply(cfg); err != nil {
		_, _ = io.WriteString(stderr, err.Error()+"\n")
		return exitUsage
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		_, _ = io.WriteString(stderr, err.Error()+"\n")
		return exitUsage
	}

	svc := app.New(
		app.WithConfig(cfg),
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithTracer(otel.Tracer(tracerName)),
	)

	out, err := dispatch(ctx, svc, action, f)
	if err != nil {
		if errors.Is(err, errUsage) {
			_, _ = io.WriteString(stderr, err.Error()+"\n")
			usage(stderr)
			return exitUsage
		}
		log.Error(ctx, "run failed", logger.String("action", action), logger.Error(err))
		return exitError
	}

	if err := report.Write(stdout, format, out); err != nil {
		log.Error(ctx, "write report failed", logger.Error(err))
		return exitError
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error(ctx, "write metrics failed", logger.String("path", cfg.MetricsFile), logger.Error(err))
			return exitError
		}
	}
	return exitOK
}

func dispatch(ctx context.Context, svc *app.Service, action string, f *flags) (report.Renderer, error) {
	switch action {
	case actionJudge:
		if err := require(map[string]string{"answer": f.answer, "teams": f.roster, "results": f.results}); err != nil {
			return nil, err
		}
		var (
			board report.Leaderboard
			err   error
		)
		if svc.Config().ScoringMode == "grade" {
			board, err = svc.JudgeGradedFiles(ctx, f.answer, f.roster, f.results)
		} else {
			board, err = svc.JudgeFiles(ctx, f.answer, f.roster, f.results)
		}
		if err != nil {
			return nil, err
		}
		if f.top > 0 {
			if board.Entries, err = svc.TopN(ctx, f.top); err != nil {
				return nil, err
			}
		}
		return board, nil

	case actionScore:
		if err := require(map[string]string{"answer": f.answer, "result": f.result}); err != nil {
			return nil, err
		}
		return svc.ScoreFile(ctx, f.answer, f.result)

	case actionGrade:
		if err := require(map[string]string{"answer": f.answer, "result": f.result}); err != nil {
			return nil, err
		}
		return svc.GradeFiles(ctx, f.answer, f.result)

	case actionDemo:
		cfg := demo.DefaultConfig(f.dir)
		cfg.Teams = f.demoTeams
		cfg.Faults = f.demoFaults
		cfg.Seed = f.demoSeed
		cfg.Workers = svc.WorkerCount()
		return demo.Generate(ctx, cfg)

	default:
		return nil, fmt.Errorf("%w: unknown action %q", errUsage, action)
	}
}
