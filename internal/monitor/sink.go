package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deploywatch/internal/probe"
)

// Sink is the per-session flat-file audit trail: one line per probe,
// append-only. Write errors are returned to the caller, never swallowed.
type Sink struct {
	f *os.File
}

// OpenSink creates dir (recursively) and the session file, named by the
// session start time with colons swapped for dashes so the name is portable.
func OpenSink(dir string, start time.Time) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	stamp := strings.ReplaceAll(start.UTC().Format(time.RFC3339), ":", "-")
	f, err := os.OpenFile(
		filepath.Join(dir, "health-"+stamp+".log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0o644,
	)
	if err != nil {
		return nil, err
	}
	return &Sink{f: f}, nil
}

func (s *Sink) Path() string {
	return s.f.Name()
}

func (s *Sink) Append(r probe.Result) error {
	_, err := s.f.WriteString(FormatLine(r) + "\n")
	return err
}

func (s *Sink) Close() error {
	return s.f.Close()
}

// FormatLine renders the audit line:
//
//	[2026-08-23T10:00:00Z] [INFO] https://app.example.com - Status: 200 ✓ 12ms
//	[2026-08-23T10:00:30Z] [ERROR] https://app.example.com - Status: 503 ✗ - Error: connection refused
func FormatLine(r probe.Result) string {
	level, mark := "ERROR", "✗"
	if r.Healthy {
		level, mark = "INFO", "✓"
	}
	line := fmt.Sprintf("[%s] [%s] %s - Status: %d %s",
		r.Timestamp.UTC().Format(time.RFC3339), level, r.URL, r.Status, mark)
	if r.ResponseTimeMS != nil {
		line += fmt.Sprintf(" %dms", *r.ResponseTimeMS)
	}
	if r.Error != "" {
		line += " - Error: " + r.Error
	}
	return line
}
