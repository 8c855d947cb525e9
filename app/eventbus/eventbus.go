package eventbus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventBus is the publish/subscribe surface the modules depend on.
type EventBus interface {
	// Publish publishes messages to a topic.
	Publish(topic string, messages ...*message.Message) error
	// Subscribe returns a channel of messages for a topic.
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	// Close shuts down the underlying connections.
	Close() error
}
