package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Async hands events to next on a separate goroutine so the caller never
// waits on a slow receiver. Failures are logged.
type Async struct {
	next    Publisher
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewAsync wraps next. Each delivery gets its own timeout, detached from
// the request that produced the event.
func NewAsync(next Publisher, timeout time.Duration, logger *zap.Logger) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Async{next: next, timeout: timeout, logger: logger}
}

func (a *Async) Publish(ctx context.Context, ev Event) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.Publish(dctx, ev); err != nil {
			a.logger.Warn("event delivery failed", zap.String("type", ev.Type), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every dispatched delivery has finished.
func (a *Async) Wait() {
	a.wg.Wait()
}
