// Package eventbus publishes and consumes docflow events over watermill.
package eventbus

import (
	"context"

	"github.com/dukex/docflow/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

// EventProducer is the publish-only side used by processes that never consume.
type EventProducer interface {
	EventPublisher
	Close() error
}

type EventBus interface {
	EventProducer
	EventSubscriber
	GenerateID() string
}
