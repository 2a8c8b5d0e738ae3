package notify

import "context"

// Notifier delivers one human-facing notice. Implementations must be safe
// for sequential reuse; the monitor calls Send from its own goroutine only.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a notice out to every non-nil notifier, returning the first
// error after all sends were attempted.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
