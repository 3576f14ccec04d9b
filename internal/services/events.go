package services

import (
	"context"

	"github.com/cinedex/apiserver/types"
)

// ActivityPublisher receives an event after each successful mutation.
// Implementations must not block the request on delivery failures.
type ActivityPublisher interface {
	Publish(ctx context.Context, event types.ActivityEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, types.ActivityEvent) {}

func publisherOrNoop(p ActivityPublisher) ActivityPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
