package probe

import (
	"context"
	"time"
)

// Result is the outcome of a single health probe. Every failure mode is
// encoded here; Probe never returns an error value.
//
// ResponseTimeMS is set only when an HTTP response actually arrived; it is
// nil for transport-level failures.
type Result struct {
	Timestamp      time.Time `json:"timestamp"`
	URL            string    `json:"url"`
	Status         int       `json:"status"`
	Healthy        bool      `json:"healthy"`
	ResponseTimeMS *int64    `json:"response_time_ms,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Checker is implemented by anything that can probe a target URL.
type Checker interface {
	Probe(ctx context.Context, target string) Result
}
