package demo

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/rcajudge/internal/adapters/loader"
	"github.com/okian/rcajudge/pkg/logger"
)

// Timeline of the generated competition, in epoch seconds.
const (
	competitionStart = 1_600_000_000
	faultSpacing     = 3600
	responseSpread   = 900
	preStartLead     = 300
)

const (
	filePermission = 0o600
	dirPermission  = 0o750
)

var (
	categories = []string{"os", "db", "docker"}
	kpis       = []string{
		"CPU_util_pct", "CPU_user_time", "Memory_free", "Memory_used_pct",
		"Disk_io_util", "User_Commit", "Proc_User_Used_Pct", "Sent_queue",
	}
)

type fault struct {
	at       int64
	category string
	host     string
	metrics  []string
}

func (f fault) pairs() [][2]string {
	out := make([][2]string, len(f.metrics))
	for i, m := range f.metrics {
		out[i] = [2]string{f.host, m}
	}
	return out
}

// Generate writes a sample competition under cfg.Dir. It fails with
// ErrExists rather than overwrite any file it would produce.
func Generate(ctx context.Context, cfg Config) (Files, error) {
	if err := cfg.validate(); err != nil {
		return Files{}, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	rng := rand.New(src)
	faults := makeFaults(rng, cfg.Faults)

	teams, err := teamIDs(src, cfg.Teams)
	if err != nil {
		return Files{}, err
	}

	files := Files{
		Answer:       filepath.Join(cfg.Dir, AnswerFile),
		Roster:       filepath.Join(cfg.Dir, RosterFile),
		ResultDir:    filepath.Join(cfg.Dir, ResultDir),
		GradedAnswer: filepath.Join(cfg.Dir, GradedDir, GradedAnswerFile),
		GradedDir:    filepath.Join(cfg.Dir, GradedDir),
		Teams:        teams,
	}

	// Content, team ids included, is produced up front from the seeded
	// source, so equal seeds give equal trees whatever the write order.
	contents := map[string][]byte{
		files.Answer:       answerDoc(faults),
		files.Roster:       []byte(strings.Join(teams, "\n") + "\n"),
		files.GradedAnswer: gradedAnswerDoc(faults),
	}
	for _, team := range teams {
		skill := 0.3 + 0.65*rng.Float64()
		contents[loader.ResultPath(files.ResultDir, team)] = submissionLog(rng, faults, skill)
		contents[filepath.Join(files.GradedDir, team+loader.GradedExt)] = gradedResultDoc(rng, faults, skill)
	}

	for path := range contents {
		if _, err := os.Stat(path); err == nil {
			return Files{}, fmt.Errorf("%w: %s", ErrExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Files{}, err
		}
	}
	for _, dir := range []string{cfg.Dir, files.ResultDir, files.GradedDir} {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return Files{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for path, data := range contents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeNew(path, data)
		})
	}
	if err := g.Wait(); err != nil {
		return Files{}, err
	}

	logger.Get().Info(ctx, "demo files written",
		logger.String("dir", cfg.Dir),
		logger.Int("teams", cfg.Teams),
		logger.Int("faults", cfg.Faults),
		logger.Int("files", len(contents)),
	)
	return files, nil
}

// RenderText lists the generated paths.
func (f Files) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "answer:        %s\nroster:        %s\nresults:       %s\ngraded answer: %s\ngraded:        %s\nteams:         %s\n",
		f.Answer, f.Roster, f.ResultDir, f.GradedAnswer, f.GradedDir, strings.Join(f.Teams, ", "))
	return err
}

// teamIDs draws distinct short ids from r. Equal readers give equal ids.
func teamIDs(r io.Reader, n int) ([]string, error) {
	ids := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(ids) < n {
		u, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return nil, fmt.Errorf("team id: %w", err)
		}
		id := "team-" + strings.SplitN(u.String(), "-", 2)[0]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePermission)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func makeFaults(rng *rand.Rand, n int) []fault {
	out := make([]fault, n)
	for i := range out {
		category := categories[rng.IntN(len(categories))]
		f := fault{
			at:       competitionStart + int64(i+1)*faultSpacing,
			category: category,
			host:     fmt.Sprintf("%s_%03d", category, rng.IntN(20)+1),
		}
		switch {
		case i == n-1 && n > 1:
			// One fault without a specific metric, like a network outage.
			f.metrics = []string{""}
		default:
			for _, k := range rng.Perm(len(kpis))[:rng.IntN(2)+1] {
				f.metrics = append(f.metrics, kpis[k])
			}
		}
		out[i] = f
	}
	return out
}

func answerDoc(faults []fault) []byte {
	data := make([]any, len(faults))
	for i, f := range faults {
		data[i] = []any{f.at, f.pairs()}
	}
	return mustJSON(map[string]any{"startTime": competitionStart, "data": data})
}

func gradedAnswerDoc(faults []fault) []byte {
	doc := make(map[string]any, len(faults))
	for i, f := range faults {
		doc[strconv.Itoa(i+1)] = []any{f.category, f.host, nullables(f.metrics)}
	}
	return mustJSON(doc)
}

func submissionLog(rng *rand.Rand, faults []fault, skill float64) []byte {
	var b strings.Builder
	b.WriteString("#generated\n")
	writeLine(&b, competitionStart-preStartLead, false, [][2]string{{"warmup_host", "CPU_util_pct"}})

	for _, f := range faults {
		at := f.at + rng.Int64N(responseSpread)
		guess := f.pairs()
		if rng.Float64() > skill {
			guess = [][2]string{{f.host, kpis[rng.IntN(len(kpis))]}}
			if rng.IntN(2) == 0 {
				// A wrong guess is followed by a late correction.
				writeLine(&b, at, rng.IntN(2) == 0, guess)
				at += responseSpread
				guess = f.pairs()
			}
		} else if rng.Float64() < 0.2 {
			guess = append(guess, [2]string{"noise_host", "Sent_queue"})
		}
		writeLine(&b, at, rng.IntN(2) == 0, guess)
	}
	if rng.Float64() > skill {
		b.WriteString("not-a-time [[\"x\", \"y\"]]\n")
	}
	return []byte(b.String())
}

func writeLine(b *strings.Builder, at int64, iso bool, pairs [][2]string) {
	if iso {
		b.WriteString(time.Unix(at, 0).UTC().Format(time.RFC3339))
	} else {
		b.WriteString(strconv.FormatInt(at, 10))
	}
	b.WriteByte(' ')
	b.Write(mustJSON(pairs))
	b.WriteByte('\n')
}

func gradedResultDoc(rng *rand.Rand, faults []fault, skill float64) []byte {
	doc := make(map[string]any, len(faults))
	for i, f := range faults {
		if rng.Float64() > skill+0.1 {
			continue
		}
		right := []any{f.category, f.host, nullable(f.metrics[0])}
		wrong := []any{f.category, f.host, kpis[rng.IntN(len(kpis))]}
		var guesses []any
		switch r := rng.Float64(); {
		case r < skill:
			guesses = []any{right, wrong}
		case r < skill+0.2:
			guesses = []any{wrong, right}
		default:
			guesses = []any{wrong}
		}
		doc[strconv.Itoa(i+1)] = guesses
	}
	return mustJSON(doc)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullables(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = nullable(s)
	}
	return out
}

func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("demo: marshal %T: %v", v, err))
	}
	return raw
}
