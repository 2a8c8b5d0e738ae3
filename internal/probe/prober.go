package probe

import (
	"context"
	"net/http"
	"time"
)

const (
	// Transport failures get a bounded number of tries with a fixed wait
	// between them. A received HTTP status is never retried here, whatever
	// its value.
	defaultAttempts = 3
	defaultBackoff  = 1000 * time.Millisecond
)

// Prober performs GET liveness checks against a single kind of target:
// healthy iff the response status equals ExpectedStatus.
type Prober struct {
	Client         *http.Client
	ExpectedStatus int
	Attempts       int
	Backoff        time.Duration
}

func New(expectedStatus int, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		Client:         &http.Client{Timeout: timeout},
		ExpectedStatus: expectedStatus,
		Attempts:       defaultAttempts,
		Backoff:        defaultBackoff,
	}
}

// Probe issues one GET against target and classifies the outcome. 4xx/5xx
// are valid results, not errors. Transport failures (dial, DNS, timeout,
// reset) are retried up to Attempts total tries; after exhaustion the result
// is a synthetic 503 carrying the underlying failure message.
func (p *Prober) Probe(ctx context.Context, target string) Result {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return p.failure(target, lastErr)
			case <-time.After(p.Backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			// Malformed target; retrying cannot help.
			return p.failure(target, err)
		}

		start := time.Now()
		resp, err := p.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		ms := time.Since(start).Milliseconds()
		return Result{
			Timestamp:      time.Now().UTC(),
			URL:            target,
			Status:         resp.StatusCode,
			Healthy:        resp.StatusCode == p.ExpectedStatus,
			ResponseTimeMS: &ms,
		}
	}
	return p.failure(target, lastErr)
}

func (p *Prober) failure(target string, err error) Result {
	return Result{
		Timestamp: time.Now().UTC(),
		URL:       target,
		Status:    http.StatusServiceUnavailable,
		Healthy:   false,
		Error:     transportReason(err),
	}
}
