// Package notify delivers application events to live listeners and to an
// outbound webhook.
package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Event types.
const (
	EventDistributionRecorded = "distribution.recorded"
	EventDailyReport          = "report.daily"
)

// Event is the envelope sent to every publisher.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ string, data any) Event {
	return Event{Type: typ, Time: time.Now().UTC(), Data: data}
}

// Publisher accepts events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout sends an event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes ev and only logs a failure. Events never fail the
// operation that produced them.
func Emit(ctx context.Context, p Publisher, ev Event, logger *zap.Logger) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil && logger != nil {
		logger.Warn("event delivery failed", zap.String("type", ev.Type), zap.Error(err))
	}
}
