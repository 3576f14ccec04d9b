// Package activity moves user activity events from the API onto the message
// bus and from the bus into the object store archive.
package activity

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/cinedex/apiserver/internal/logging"
	"github.com/cinedex/apiserver/internal/metrics"
	"github.com/cinedex/apiserver/internal/mq"
	"github.com/cinedex/apiserver/types"
)

const publishTimeout = 5 * time.Second

// Publisher sends activity events to the bus. Delivery failures are logged
// and counted; they never reach the caller.
type Publisher struct {
	bus *mq.MQ
	now func() time.Time
}

func NewPublisher(bus *mq.MQ) *Publisher {
	return &Publisher{bus: bus, now: time.Now}
}

// Publish assigns the event id and time when unset and sends it.
func (p *Publisher) Publish(ctx context.Context, event types.ActivityEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	log := logging.Ctx(ctx).With().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Logger()

	data, err := json.Marshal(event)
	if err != nil {
		metrics.ActivityEventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		log.Error().Err(err).Msg("encode activity event")
		return
	}

	// The request may finish before the broker confirms.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if _, err := p.bus.Publish(ctx, data, map[string]string{"type": string(event.Type)}); err != nil {
		metrics.ActivityEventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		log.Warn().Err(err).Msg("publish activity event")
		return
	}
	metrics.ActivityEventsPublished.WithLabelValues(string(event.Type), "ok").Inc()
	log.Debug().Msg("activity event published")
}
