// Package service holds the write guards that gate persistence of ads and
// bookings, plus the read helpers built on top of them.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/vacation-rental/internal/queue"
)

// Domain errors.  Both are client errors: the request is refused and
// nothing is written.
var (
	ErrAdHasBookings    = errors.New("ad has bookings, cannot delete")
	ErrDatesUnavailable = errors.New("booking dates unavailable")
)

// Publisher sends domain events after a write commits.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// publish sends ev and only logs failures; a broker outage must not undo a
// committed write.
func publish(ctx context.Context, p Publisher, ev queue.BookingEvent) {
	if p == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	if err := p.Publish(ctx, ev); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event", ev.Type).Msg("publish event failed")
	}
}
