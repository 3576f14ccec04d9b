package activity

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/cinedex/apiserver/internal/logging"
	"github.com/cinedex/apiserver/internal/metrics"
	"github.com/cinedex/apiserver/internal/mq"
	"github.com/cinedex/apiserver/internal/storage"
	"github.com/cinedex/apiserver/types"
)

// Archiver writes each event from the bus to object storage.
type Archiver struct {
	store *storage.Storage
}

func NewArchiver(store *storage.Storage) *Archiver {
	return &Archiver{store: store}
}

// Run ensures the bucket exists and consumes bus until ctx is done.
func (a *Archiver) Run(ctx context.Context, bus *mq.MQ) error {
	if err := a.store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", a.store.Bucket(), err)
	}
	logging.Info().
		Str("channel", bus.Channel()).
		Str("bucket", a.store.Bucket()).
		Msg("activity archiver started")
	return bus.Subscribe(ctx, a.Handle)
}

// Handle archives one message. Malformed messages are dropped and
// acknowledged; storage failures are returned so the broker redelivers.
func (a *Archiver) Handle(ctx context.Context, msg mq.Message) error {
	log := logging.Ctx(ctx).With().Str("message_id", msg.ID).Logger()

	var event types.ActivityEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		metrics.ActivityEventsArchived.WithLabelValues("dropped").Inc()
		log.Warn().Err(err).Msg("dropping malformed activity message")
		return nil
	}
	if event.ID == "" || event.Type == "" || event.OccurredAt.IsZero() {
		metrics.ActivityEventsArchived.WithLabelValues("dropped").Inc()
		log.Warn().Msg("dropping incomplete activity event")
		return nil
	}

	key := ObjectKey(event)
	if err := a.store.PutJSON(ctx, key, msg.Data); err != nil {
		metrics.ActivityEventsArchived.WithLabelValues("failed").Inc()
		return fmt.Errorf("archive %s: %w", key, err)
	}
	metrics.ActivityEventsArchived.WithLabelValues("stored").Inc()
	log.Debug().Str("key", key).Msg("activity event archived")
	return nil
}

// ObjectKey returns activity/YYYY/MM/DD/<type>/<id>.json in UTC.
func ObjectKey(event types.ActivityEvent) string {
	return fmt.Sprintf("activity/%s/%s/%s.json",
		event.OccurredAt.UTC().Format("2006/01/02"), event.Type, event.ID)
}
