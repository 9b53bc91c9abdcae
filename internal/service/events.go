package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

const publishTimeout = 3 * time.Second

// publish never fails the caller; a lost event is only logged.
func publish(ctx context.Context, p mykafka.Publisher, topic, key, typ string, payload any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := mykafka.Event{Type: typ, OccurredAt: time.Now().UTC(), Payload: payload}
	if err := p.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", typ, "error", err)
	}
}
