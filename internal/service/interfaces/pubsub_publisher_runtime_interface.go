package interfaces

import "context"

// RuntimePubSubPublisher is a small interface representing the methods
// the runtime provides for publishing notifications to Pub/Sub. It's
// intentionally minimal to avoid import cycles with pkg/pubsub.
type RuntimePubSubPublisher interface {
	Publish(ctx context.Context, topic string, msg []byte) error
	Close() error
}
