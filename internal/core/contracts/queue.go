package contracts

import "context"

// EventQueue is the durable side of message fan-out: committed message rows
// are appended to a stream and consumed by the badge worker with a consumer
// group, so unread counts survive worker restarts.
type EventQueue interface {
	// Producer side (message service, after commit)
	PublishToStream(ctx context.Context, payload []byte) error
	// Consumer side (badge worker)
	SubscribeToStream(ctx context.Context, group string, handler func(ctx context.Context, messageID string, data []byte) error) error
	// AcknowledgeMessage removes the entry from the pending list once handled
	AcknowledgeMessage(ctx context.Context, group, msgID string) error
	// DeleteMessage trims the handled entry from the stream
	DeleteMessage(ctx context.Context, msgID string) error
}
