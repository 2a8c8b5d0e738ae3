package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"deploywatch/internal/notify"
	"deploywatch/internal/probe"
	"deploywatch/internal/session"
)

const (
	// alertAfter is the unhealthy streak at which every further probe raises
	// an elevated alert, not only the crossing one.
	alertAfter = 3
	// heartbeatEvery spaces out "still passing" notices on long healthy runs.
	heartbeatEvery = 5
)

// Monitor drives one health-check session: an immediate probe, then one per
// Interval, each followed by streak bookkeeping, an audit-trail line, and the
// console notice policy. Probe failures are data; the only things that stop
// a session are the cancel func returned by Start and a sink write failure.
type Monitor struct {
	Logger   *zap.Logger
	Checker  probe.Checker
	Notifier notify.Notifier
	Sessions *session.Store
	LogDir   string
	Interval time.Duration

	mu  sync.Mutex
	err error
}

func New(
	logger *zap.Logger,
	checker probe.Checker,
	notifier notify.Notifier,
	sessions *session.Store,
	logDir string,
	interval time.Duration,
) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		Logger:   logger,
		Checker:  checker,
		Notifier: notifier,
		Sessions: sessions,
		LogDir:   logDir,
		Interval: interval,
	}
}

// Start opens the session sink synchronously, then probes target once
// immediately and again every Interval until the returned cancel func runs.
// Cancel is idempotent. Only sink creation can fail here.
func (m *Monitor) Start(target string) (func(), error) {
	start := time.Now().UTC()
	sink, err := OpenSink(m.LogDir, start)
	if err != nil {
		return nil, err
	}

	sess := m.Sessions.Begin(target, start)
	ctx, cancel := context.WithCancel(context.Background())
	go m.run(ctx, target, sink)

	m.Logger.Info("monitor_started",
		zap.String("url", target),
		zap.String("session_id", sess.ID.String()),
		zap.String("health_log", sink.Path()),
		zap.Duration("interval", m.Interval),
	)
	return func() { cancel() }, nil
}

// Err reports the sink failure that ended the session, if any.
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Monitor) run(ctx context.Context, target string, sink *Sink) {
	defer sink.Close()

	if !m.step(ctx, target, sink) {
		return
	}

	t := time.NewTicker(m.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Logger.Info("monitor_stopped", zap.String("url", target))
			return
		case <-t.C:
			if !m.step(ctx, target, sink) {
				return
			}
		}
	}
}

// step runs one probe and the bookkeeping that follows: streak update, audit
// line, console notices. Returns false when the session must end — either
// cancellation was observed or the audit trail can no longer be written.
func (m *Monitor) step(ctx context.Context, target string, sink *Sink) bool {
	res := m.Checker.Probe(ctx, target)
	if ctx.Err() != nil {
		// Cancelled while the probe was in flight; discard the result so
		// nothing is appended after cancellation.
		return false
	}

	healthy, unhealthy := m.Sessions.Record(res)

	if err := sink.Append(res); err != nil {
		m.mu.Lock()
		m.err = err
		m.mu.Unlock()
		m.Logger.Error("health_log_write_failed",
			zap.String("url", target),
			zap.Error(err),
		)
		return false
	}

	m.notice(ctx, res, healthy, unhealthy)
	return true
}

// notice applies the console summarization policy. Healthy runs are quiet:
// a notice on the first success and on every multiple of heartbeatEvery.
// Unhealthy probes always notify, with an elevated alert on every probe once
// the streak reaches alertAfter.
func (m *Monitor) notice(ctx context.Context, r probe.Result, healthy, unhealthy int) {
	if r.Healthy {
		if healthy == 1 || healthy%heartbeatEvery == 0 {
			text := fmt.Sprintf("%s (status %d", r.URL, r.Status)
			if r.ResponseTimeMS != nil {
				text += fmt.Sprintf(", %dms", *r.ResponseTimeMS)
			}
			text += fmt.Sprintf(", streak %d)", healthy)
			m.send(ctx, "🟢 Health check passed", text)
		}
		return
	}

	text := fmt.Sprintf("%s (status %d)", r.URL, r.Status)
	if r.Error != "" {
		text += " - " + r.Error
	}
	m.send(ctx, "🔴 Health check failed", text)

	if unhealthy >= alertAfter {
		m.send(ctx, "🚨 ALERT", fmt.Sprintf("%s unhealthy for %d consecutive checks", r.URL, unhealthy))
	}
}

func (m *Monitor) send(ctx context.Context, title, text string) {
	if err := m.Notifier.Send(ctx, title, text); err != nil {
		m.Logger.Warn("notice_send_failed", zap.Error(err))
	}
}
