package contracts

import (
	"context"

	"github.com/joakmannn/SocialMed/internal/core/domain"
)

// Subscription is a live stream of inserted message rows. Events delivery is
// at-least-once and arrival order is not guaranteed to match creation order;
// consumers must dedupe by message id and re-derive display order themselves.
type Subscription interface {
	// Events is closed after Close. The channel is table-wide: it may carry
	// rows outside the consumer's conversation.
	Events() <-chan domain.Message
	// Close releases the subscription. Closing twice is a no-op.
	Close()
}

// ChangeFeed is the change-notification primitive of the store. Writers
// publish committed rows, readers subscribe for new-row events.
type ChangeFeed interface {
	Publish(ctx context.Context, msg domain.Message) error
	Subscribe(ctx context.Context) (Subscription, error)
}
