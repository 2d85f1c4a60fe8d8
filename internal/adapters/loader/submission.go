package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/okian/rcajudge/internal/domain/model"
)

// timestampLayouts are tried in order for ISO-8601 timestamps. Layouts
// without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp converts an ISO-8601 timestamp or epoch seconds to epoch
// seconds.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return float64(t.UnixNano()) / float64(time.Second), nil
		}
	}
	return 0, fmt.Errorf("unrecognized timestamp %q", s)
}

// LoadSubmissions reads a team's submission log from path.
func LoadSubmissions(path string) ([]model.Submission, Diagnostics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadSubmissions(f, path)
}

// ReadSubmissions parses lines of "<timestamp> <json [[host, metric], ...]>".
// Lines without a separator are ignored; lines that fail to parse become
// diagnostics. The result is sorted by timestamp, keeping file order on ties.
func ReadSubmissions(r io.Reader, source string) ([]model.Submission, Diagnostics, error) {
	var (
		subs  []model.Submission
		diags Diagnostics
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		sep := strings.IndexByte(text, ' ')
		if sep < 0 {
			continue
		}

		sub, err := parseSubmission(text[:sep], text[sep+1:])
		if err != nil {
			diags = append(diags, Diagnostic{
				Source: source,
				Line:   line,
				Err:    fmt.Errorf("%w: %q: %w", ErrParse, text, err),
			})
			continue
		}
		subs = append(subs, sub)
	}
	if err := sc.Err(); err != nil {
		return nil, diags, fmt.Errorf("read %s: %w", source, err)
	}

	sort.SliceStable(subs, func(i, j int) bool { return subs[i].At < subs[j].At })
	return subs, diags, nil
}

func parseSubmission(ts, payload string) (model.Submission, error) {
	at, err := ParseTimestamp(ts)
	if err != nil {
		return model.Submission{}, err
	}
	payload = strings.TrimSpace(payload)
	if !gjson.Valid(payload) {
		return model.Submission{}, fmt.Errorf("malformed json payload")
	}
	ids, err := parsePairs(gjson.Parse(payload))
	if err != nil {
		return model.Submission{}, err
	}
	return model.Submission{At: at, Payload: ids}, nil
}
