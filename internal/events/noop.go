package events

import "context"

// NoopPublisher discards mutation events. The server falls back to it
// when TABULAIRE_NATS_URL is not set.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
